package params

// D65Gains are the white balance gains measured on a white card under
// 6500K light; the sensor read R:Gr:Gb:B = 2626:1000:1000:1263
var D65Gains = [4]float64{2.626, 1.0, 1.0, 1.263}

// GammaLUT is an 11 point display tone curve, close to x^(1/2.2)
var GammaLUT = []float64{
	0, 0.3504950718773984, 0.48243595264750255, 0.57750428843709,
	0.6596458942714417, 0.731034378464739, 0.7925580792857235,
	0.8509817015104557, 0.9029435754464383, 0.9534255851019492, 1.0,
}

// DefaultSharpenRatio is the unsharp mask blend used when none is configured
const DefaultSharpenRatio = 0.6

// Default returns a bundle for a 12-bit companded sensor that expands
// to 20 bits linear.  Every call returns fresh slices.
func Default() Prms {
	p := Prms{
		Info: Info{MaxVal: 1<<20 - 1, CFA: "RGGB"},
		DePwl: DePwl{
			XCood: []int32{0, 2048, 3072, 3584, 4095},
			YCood: []int32{0, 2048, 10240, 43008, 566272},
		},
		Dpc:     Dpc{Thres: 30, Mode: Gradient},
		Gamma:   Gamma{Curve: append([]float64(nil), GammaLUT...), InBits: 20, OutBits: 8},
		Sharpen: Sharpen{Ratio: DefaultSharpenRatio},
		WbGain:  WbGain{D65Gain: D65Gains},
	}
	p.DePwl.ComputeSlopes()
	return p
}
