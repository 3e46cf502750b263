package liquidglass

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Ebitengine images are premultiplied;
// shaders un-premultiply before touching color and re-premultiply on output.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// maxTransferValues bounds the table size of the alpha transfer shader.
const maxTransferValues = 8

const alphaTransferShaderSrc = `//kage:unit pixels
package main

var Values [8]float
var Count float
var Discrete float

func lookup(k float) float {
	v := 0.0
	for i := 0; i < 8; i++ {
		if float(i) == k {
			v = Values[i]
		}
	}
	return v
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	rgb := vec3(0)
	if c.a > 0 {
		rgb = c.rgb / c.a
	}
	a := clamp(c.a, 0, 1)
	if Count >= 1 {
		if Discrete > 0 {
			a = lookup(min(floor(a*Count), Count-1))
		} else if Count == 1 {
			a = Values[0]
		} else {
			pos := a * (Count - 1)
			k := min(floor(pos), Count-2)
			a = mix(lookup(k), lookup(k+1), pos-k)
		}
	}
	a = clamp(a, 0, 1)
	return vec4(rgb*a, a)
}
`

const displaceShaderSrc = `//kage:unit pixels
package main

var Scale float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	m := imageSrc1At(src)
	if m.a > 0 {
		m.rgb /= m.a
	}
	off := Scale * vec2(m.r-0.5, m.b-0.5)
	return imageSrc0At(src + off)
}
`

// maxBlurRadius bounds the Gaussian kernel of the blur shader.
const maxBlurRadius = 12

const gaussianShaderSrc = `//kage:unit pixels
package main

var Kernel [25]float
var Radius float
var Direction vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	acc := vec4(0)
	for i := 0; i < 25; i++ {
		o := float(i) - 12
		if abs(o) <= Radius {
			acc += Kernel[i] * imageSrc0At(src+Direction*o)
		}
	}
	return acc
}
`

// --- Lazy shader compilation (single-threaded; called from Update/Draw) ---

var (
	colorMatrixShader   *ebiten.Shader
	alphaTransferShader *ebiten.Shader
	displaceShader      *ebiten.Shader
	gaussianShader      *ebiten.Shader
)

func compileShader(slot **ebiten.Shader, name, src string) *ebiten.Shader {
	if *slot == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("liquidglass: failed to compile " + name + " shader: " + err.Error())
		}
		*slot = s
	}
	return *slot
}

func ensureColorMatrixShader() *ebiten.Shader {
	return compileShader(&colorMatrixShader, "color matrix", colorMatrixShaderSrc)
}

func ensureAlphaTransferShader() *ebiten.Shader {
	return compileShader(&alphaTransferShader, "alpha transfer", alphaTransferShaderSrc)
}

func ensureDisplaceShader() *ebiten.Shader {
	return compileShader(&displaceShader, "displacement", displaceShaderSrc)
}

func ensureGaussianShader() *ebiten.Shader {
	return compileShader(&gaussianShader, "gaussian", gaussianShaderSrc)
}
