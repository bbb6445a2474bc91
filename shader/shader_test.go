package shader

import (
	"strings"
	"testing"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

func TestSPIRV(t *testing.T) {
	code, err := SPIRV()
	if err != nil {
		t.Fatalf("SPIRV() error = %v", err)
	}
	if len(code) < 5 {
		t.Fatalf("SPIRV() returned %d words, want a full module", len(code))
	}
	if code[0] != spirvMagic {
		t.Errorf("magic = %#08x, want %#08x", code[0], spirvMagic)
	}

	again, _ := SPIRV()
	if &again[0] != &code[0] {
		t.Error("SPIRV() compiled the program twice")
	}
}

func TestSourceEntryPoints(t *testing.T) {
	src := Source()
	for _, name := range []string{VertexEntryPoint, FragmentEntryPoint} {
		if !strings.Contains(src, "fn "+name+"(") {
			t.Errorf("source has no entry point %q", name)
		}
	}
	if !strings.Contains(src, "discard") {
		t.Error("fragment stage must discard uncovered texels")
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("fn broken( {"); err == nil {
		t.Error("Compile() of invalid WGSL returned nil error")
	}
}
