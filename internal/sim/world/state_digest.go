package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	w.digestZones(h)
	w.digestRobot(h, &tmp)
	w.digestDebris(h, &tmp)
	w.digestController(h, &tmp)

	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestZones(h hashWriter) {
	for _, z := range w.reg.All() {
		h.Write([]byte(z.ID))
		h.Write([]byte{boolByte(z.Occupied)})
	}
}

func (w *World) digestRobot(h hashWriter, tmp *[8]byte) {
	b := w.robot
	for i := 0; i < 3; i++ {
		digestWriteF64(h, tmp, b.Center[i])
	}
	for i := 0; i < 3; i++ {
		digestWriteF64(h, tmp, b.Velocity[i])
	}
	h.Write([]byte{
		boolByte(b.Perm.NegX), boolByte(b.Perm.PosX),
		boolByte(b.Perm.NegZ), boolByte(b.Perm.PosZ),
		boolByte(w.onFloor),
	})
}

func (w *World) digestDebris(h hashWriter, tmp *[8]byte) {
	digestWriteU64(h, tmp, uint64(w.collected))
	for _, d := range w.debrisAll {
		h.Write([]byte(d.ID))
		h.Write([]byte{boolByte(d.Visible)})
	}
}

func (w *World) digestController(h hashWriter, tmp *[8]byte) {
	st := w.ctl.Export()
	h.Write([]byte(st.Phase))
	h.Write([]byte(st.Pass))
	digestWriteI64(h, tmp, int64(st.CurrentIndex))
	digestWriteI64(h, tmp, int64(st.PendingIndex))
	for _, id := range st.Pending {
		h.Write([]byte(id))
	}
	h.Write([]byte{'|'})
	for _, id := range st.Cleaned {
		h.Write([]byte(id))
	}
	digestWriteI64(h, tmp, int64(st.HalfZones))
	digestWriteI64(h, tmp, int64(st.Wait))
	h.Write([]byte{boolByte(st.Charging), boolByte(st.AllCleaned)})
	digestWriteF64(h, tmp, st.Battery)
	c := st.Sweep
	for _, v := range []int{c.Col, c.Row, c.Cols, c.Rows, c.Dir, int(st.ChargeStage)} {
		digestWriteI64(h, tmp, int64(v))
	}
	digestWriteF64(h, tmp, c.X)
	digestWriteF64(h, tmp, c.Z)
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
