package tasks

type ChargeParams struct {
	// Enabled turns the excursion into a real trip to the station.
	// When false the excursion completes the tick it starts.
	Enabled        bool
	StationX       float64
	StationZ       float64
	DwellTicks     int
	BatteryPerCell float64
}

type Params struct {
	MoveStep        float64
	ArriveThreshold float64
	SweepStep       float64

	ScanDwellTicks  int
	VacateWaitTicks int
	CellDwellTicks  int
	ExitDwellTicks  int

	// ChargeEveryHalfZones triggers a charging excursion whenever the half-zone counter
	// reaches a nonzero multiple of it. Zero disables the trigger.
	ChargeEveryHalfZones int
	Charge               ChargeParams
}

// DefaultParams returns the timings of a 60 Hz loop.
func DefaultParams() Params {
	return Params{
		MoveStep:             0.08,
		ArriveThreshold:      0.1,
		SweepStep:            1,
		ScanDwellTicks:       120,
		VacateWaitTicks:      120,
		CellDwellTicks:       3,
		ExitDwellTicks:       60,
		ChargeEveryHalfZones: 5,
		Charge: ChargeParams{
			StationX:       0,
			StationZ:       -2,
			DwellTicks:     300,
			BatteryPerCell: 0.25,
		},
	}
}
