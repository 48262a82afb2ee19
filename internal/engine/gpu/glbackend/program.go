package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

type programKey struct{ vs, ps *Shader }

// program is a linked vertex and pixel shader pair. Locations are looked up
// on first use.
type program struct {
	id        uint32
	locations map[string]int32
	blocks    map[string]uint32
	sizes     map[uint32]int
}

func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *program) blockIndex(name string) uint32 {
	if idx, ok := p.blocks[name]; ok {
		return idx
	}
	idx := gl.GetUniformBlockIndex(p.id, gl.Str(name+"\x00"))
	p.blocks[name] = idx
	return idx
}

func (p *program) blockSize(idx uint32) int {
	if n, ok := p.sizes[idx]; ok {
		return n
	}
	var n int32
	gl.GetActiveUniformBlockiv(p.id, idx, gl.UNIFORM_BLOCK_DATA_SIZE, &n)
	p.sizes[idx] = int(n)
	return int(n)
}

// linkProgram links a vertex shader with an optional fragment shader.
func linkProgram(vs, ps *Shader) (*program, error) {
	id := gl.CreateProgram()
	gl.AttachShader(id, vs.id)
	if ps != nil {
		gl.AttachShader(id, ps.id)
	}
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(id, logLen, nil, &log[0])
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", gl.GoStr(&log[0]))
	}

	return &program{
		id:        id,
		locations: make(map[string]int32),
		blocks:    make(map[string]uint32),
		sizes:     make(map[uint32]int),
	}, nil
}

// prepareDraw links the bound shader pair on first use, makes it current
// and uploads both stages' committed parameters.
func (b *Backend) prepareDraw() bool {
	if b.vs == nil {
		return false
	}
	key := programKey{vs: b.vs, ps: b.ps}
	if b.broken[key] {
		return false
	}

	p, ok := b.programs[key]
	if !ok {
		var err error
		p, err = linkProgram(b.vs, b.ps)
		if err != nil {
			// Logged once; the pair is skipped from now on.
			b.broken[key] = true
			b.log.Error("linking program failed",
				zap.String("vertex", b.vs.name),
				zap.String("pixel", psName(b.ps)),
				zap.Error(err),
			)
			return false
		}
		b.programs[key] = p
	}

	gl.UseProgram(p.id)
	var unit, binding uint32
	b.vs.apply(p, &unit, &binding)
	if b.ps != nil {
		b.ps.apply(p, &unit, &binding)
	}
	b.boundUnits = max(b.boundUnits, int(unit))
	return true
}

func psName(s *Shader) string {
	if s == nil {
		return "<none>"
	}
	return s.name
}
