package thermo

// Atomic weights in kg/kmol.
var atomicWeights = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"Ar": 39.95,
}

// Gas-phase data are the GRI-Mech 3.0 fits; the liquids carry the assigned
// enthalpies at their normal boiling points.
var builtinSpecies = []Species{
	{
		Name: "H2", Composition: map[string]float64{"H": 2},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{2.34433112, 7.98052075e-03, -1.9478151e-05, 2.01572094e-08, -7.37611761e-12, -917.935173, 0.683010238},
			High: [7]float64{3.3372792, -4.94024731e-05, 4.99456778e-07, -1.79566394e-10, 2.00255376e-14, -950.158922, -3.20502331},
		},
	},
	{
		Name: "H", Composition: map[string]float64{"H": 1},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{2.5, 7.05332819e-13, -1.99591964e-15, 2.30081632e-18, -9.27732332e-22, 25473.6599, -0.446682853},
			High: [7]float64{2.50000001, -2.30842973e-11, 1.61561948e-14, -4.73515235e-18, 4.98197357e-22, 25473.6599, -0.446682914},
		},
	},
	{
		Name: "O", Composition: map[string]float64{"O": 1},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{3.1682671, -3.27931884e-03, 6.64306396e-06, -6.12806624e-09, 2.11265971e-12, 29122.2592, 2.05193346},
			High: [7]float64{2.56942078, -8.59741137e-05, 4.19484589e-08, -1.00177799e-11, 1.22833691e-15, 29217.5791, 4.78433864},
		},
	},
	{
		Name: "O2", Composition: map[string]float64{"O": 2},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{3.78245636, -2.99673416e-03, 9.84730201e-06, -9.68129509e-09, 3.24372837e-12, -1063.94356, 3.65767573},
			High: [7]float64{3.28253784, 1.48308754e-03, -7.57966669e-07, 2.09470555e-10, -2.16717794e-14, -1088.45772, 5.45323129},
		},
	},
	{
		Name: "OH", Composition: map[string]float64{"O": 1, "H": 1},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{3.99201543, -2.40131752e-03, 4.61793841e-06, -3.88113333e-09, 1.3641147e-12, 3615.08056, -0.103925458},
			High: [7]float64{3.09288767, 5.48429716e-04, 1.26505228e-07, -8.79461556e-11, 1.17412376e-14, 3858.657, 4.4766961},
		},
	},
	{
		Name: "H2O", Composition: map[string]float64{"H": 2, "O": 1},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{4.19864056, -2.0364341e-03, 6.52040211e-06, -5.48797062e-09, 1.77197817e-12, -30293.7267, -0.849032208},
			High: [7]float64{3.03399249, 2.17691804e-03, -1.64072518e-07, -9.7041987e-11, 1.68200992e-14, -30004.2971, 4.9667701},
		},
	},
	{
		Name: "HO2", Composition: map[string]float64{"H": 1, "O": 2},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{4.30179801, -4.74912051e-03, 2.11582891e-05, -2.42763894e-08, 9.29225124e-12, 294.80804, 3.71666245},
			High: [7]float64{4.0172109, 2.23982013e-03, -6.3365815e-07, 1.1424637e-10, -1.07908535e-14, 111.856713, 3.78510215},
		},
	},
	{
		Name: "H2O2", Composition: map[string]float64{"H": 2, "O": 2},
		Thermo: NASA7{TMin: 200, TMid: 1000, TMax: 3500,
			Low:  [7]float64{4.27611269, -5.42822417e-04, 1.67335701e-05, -2.15770813e-08, 8.62454363e-12, -17702.5821, 3.43505074},
			High: [7]float64{4.16500285, 4.90831694e-03, -1.90139225e-06, 3.71185986e-10, -2.87908305e-14, -17861.7877, 2.91615662},
		},
	},
	{
		Name: "H2(L)", Phase: Condensed, Composition: map[string]float64{"H": 2},
		Thermo: ConstCp{T0: 20.27, H0: -9.012e6, Cp: 1.95e4, TMin: 13.96, TMax: 33.19},
	},
	{
		Name: "O2(L)", Phase: Condensed, Composition: map[string]float64{"O": 2},
		Thermo: ConstCp{T0: 90.17, H0: -1.2979e7, Cp: 5.44e4, TMin: 54.36, TMax: 154.58},
	},
}

// Builtin returns the hydrogen/oxygen system used for LH2/LOX propellants.
func Builtin() *System {
	sys, err := NewSystem(builtinSpecies...)
	if err != nil {
		panic(err)
	}
	return sys
}
