package material

// Built-in dielectric table. Epsilon values are taken at typical
// telecom/visible design wavelengths; anisotropic entries carry the
// full tensor diagonal with the c-axis along z.
var table = map[string]Material{
	"air":     {name: "air", eps: [3]float64{1, 1, 1}},
	"SiO2":    {name: "SiO2", eps: [3]float64{2.1316, 2.1316, 2.1316}},
	"SiN":     {name: "SiN", eps: [3]float64{4.0804, 4.0804, 4.0804}},
	"Si":      {name: "Si", eps: [3]float64{12.1104, 12.1104, 12.1104}},
	"GaAs":    {name: "GaAs", eps: [3]float64{11.56, 11.56, 11.56}},
	"diamond": {name: "diamond", eps: [3]float64{5.76, 5.76, 5.76}},
	"4H-SiC-anisotropic_c_in_z": {
		name:  "4H-SiC-anisotropic_c_in_z",
		eps:   [3]float64{6.5204, 6.5204, 6.7531},
		aniso: true,
	},
}

// Air is the default background material.
var Air = table["air"]
