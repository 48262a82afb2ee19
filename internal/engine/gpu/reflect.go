package gpu

import (
	"regexp"
	"strings"
)

// VarKind is the type of a shader parameter.
type VarKind uint8

const (
	KindFloat VarKind = iota
	KindFloat2
	KindFloat3
	KindFloat4
	KindInt
	KindMatrix
	KindBlock
	KindTexture
	KindSampler
)

// Variable is one named shader parameter.
type Variable struct {
	Name  string
	Kind  VarKind
	Array int // element count, 0 for scalars
	// Pair names the texture a sampler variable applies to.
	Pair string
}

// Layout is the reflected parameter set of one shader.
type Layout struct {
	vars   []Variable
	byName map[string]int
}

var (
	uniformRe = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	blockRe   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?uniform\s+(\w+)\s*\{`)
)

// Reflect collects the uniforms and uniform blocks declared in GLSL source.
//
// GLSL combines textures and samplers, so every texture variable also gets a
// sampler variable: "SkyTexture" and "ShadowMap" pair with "SkySampler" and
// "ShadowSampler", any other name N pairs with "NSampler".
func Reflect(code string) *Layout {
	l := &Layout{byName: make(map[string]int)}

	for _, m := range blockRe.FindAllStringSubmatch(code, -1) {
		l.add(Variable{Name: m[1], Kind: KindBlock})
	}
	for _, m := range uniformRe.FindAllStringSubmatch(code, -1) {
		kind, ok := kindOf(m[1])
		if !ok {
			continue
		}
		v := Variable{Name: m[2], Kind: kind}
		if m[3] != "" {
			v.Array = atoi(m[3])
		}
		l.add(v)
	}
	for _, v := range l.Textures() {
		l.add(Variable{Name: SamplerName(v.Name), Kind: KindSampler, Pair: v.Name})
	}
	return l
}

// SamplerName returns the sampler variable name paired with a texture.
func SamplerName(texture string) string {
	for _, suffix := range []string{"Texture", "Map"} {
		if base, ok := strings.CutSuffix(texture, suffix); ok && base != "" {
			return base + "Sampler"
		}
	}
	return texture + "Sampler"
}

func (l *Layout) add(v Variable) {
	if _, dup := l.byName[v.Name]; dup {
		return
	}
	l.byName[v.Name] = len(l.vars)
	l.vars = append(l.vars, v)
}

// Lookup returns the variable with the given name.
func (l *Layout) Lookup(name string) (Variable, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Variable{}, false
	}
	return l.vars[i], true
}

// Variables returns every variable in declaration order, blocks first.
func (l *Layout) Variables() []Variable {
	return l.vars
}

// Textures returns the texture variables in declaration order.
func (l *Layout) Textures() []Variable {
	var out []Variable
	for _, v := range l.vars {
		if v.Kind == KindTexture {
			out = append(out, v)
		}
	}
	return out
}

func kindOf(glslType string) (VarKind, bool) {
	switch glslType {
	case "float":
		return KindFloat, true
	case "vec2":
		return KindFloat2, true
	case "vec3":
		return KindFloat3, true
	case "vec4":
		return KindFloat4, true
	case "int", "bool", "uint":
		return KindInt, true
	case "mat4":
		return KindMatrix, true
	}
	if strings.HasPrefix(glslType, "sampler") {
		return KindTexture, true
	}
	return 0, false
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
