package dxdec

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gogpu/dxdec/shader"
)

// ---------------------------------------------------------------------------
// Benchmark programs
// ---------------------------------------------------------------------------

var benchPrograms = []string{
	"transform.yaml",
	"repeat.yaml",
}

func loadBenchProgram(b *testing.B, name string) *shader.Program {
	b.Helper()
	prog, err := shader.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		b.Fatalf("read %s: %v", name, err)
	}
	return prog
}

// ---------------------------------------------------------------------------
// End-to-end
// ---------------------------------------------------------------------------

// BenchmarkDecompile benchmarks the full pipeline with graph analysis.
func BenchmarkDecompile(b *testing.B) {
	for _, name := range benchPrograms {
		b.Run(name, func(b *testing.B) {
			prog := loadBenchProgram(b, name)
			b.ReportAllocs()
			b.ResetTimer()

			var code string
			for i := 0; i < b.N; i++ {
				var err error
				code, _, err = Decompile(prog, nil)
				if err != nil {
					b.Fatalf("decompile failed: %v", err)
				}
			}
			runtime.KeepAlive(code)
		})
	}
}

// BenchmarkDecompileWithVerification measures the overhead of verifying
// the graph after lifting and after rewriting.
func BenchmarkDecompileWithVerification(b *testing.B) {
	prog := loadBenchProgram(b, "transform.yaml")
	opts := DefaultOptions()
	opts.VerifyGraph = true
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := Decompile(prog, opts); err != nil {
			b.Fatalf("decompile failed: %v", err)
		}
	}
}

// BenchmarkDecompileSkipAnalysis benchmarks direct instruction translation.
func BenchmarkDecompileSkipAnalysis(b *testing.B) {
	for _, name := range benchPrograms {
		b.Run(name, func(b *testing.B) {
			prog := loadBenchProgram(b, name)
			opts := &Options{SkipAnalysis: true}
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, _, err := Decompile(prog, opts); err != nil {
					b.Fatalf("decompile failed: %v", err)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Individual stages
// ---------------------------------------------------------------------------

// BenchmarkLift benchmarks graph construction alone.
func BenchmarkLift(b *testing.B) {
	for _, name := range benchPrograms {
		b.Run(name, func(b *testing.B) {
			prog := loadBenchProgram(b, name)
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				module, err := Lift(prog, nil)
				if err != nil {
					b.Fatalf("lift failed: %v", err)
				}
				runtime.KeepAlive(module)
			}
		})
	}
}

// BenchmarkSimplify benchmarks the rewrite engine on a freshly lifted graph.
func BenchmarkSimplify(b *testing.B) {
	prog := loadBenchProgram(b, "transform.yaml")
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		module, err := Lift(prog, nil)
		if err != nil {
			b.Fatalf("lift failed: %v", err)
		}
		b.StartTimer()
		Simplify(module, nil)
	}
}
