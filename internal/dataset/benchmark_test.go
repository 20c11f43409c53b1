package dataset_test

import (
	"testing"
	"time"

	"github.com/augurlab/augur/internal/dataset"
	"github.com/augurlab/augur/mocks"
)

// setupBenchmarkDataset generates a deterministic series of the given size.
func setupBenchmarkDataset(b *testing.B, count int) *dataset.Dataset {
	gen := mocks.NewDataGenerator(42)
	config := mocks.DefaultConfig()
	config.Symbol = "BENCH"
	config.Count = count

	ds, err := gen.GenerateDataset(config)
	if err != nil {
		b.Fatal(err)
	}

	return ds
}

// BenchmarkFloorIndex benchmarks window boundary resolution onto an exact bar
func BenchmarkFloorIndex(b *testing.B) {
	counts := []int{100, 1000, 10000}

	for _, count := range counts {
		b.Run(formatCount(count), func(b *testing.B) {
			ds := setupBenchmarkDataset(b, count)

			midBar, err := ds.At(count / 2)
			if err != nil {
				b.Fatal(err)
			}
			midTime := midBar.Time

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := ds.FloorIndex(midTime)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCeilIndex benchmarks resolution of a timestamp between two bars
func BenchmarkCeilIndex(b *testing.B) {
	counts := []int{100, 1000, 10000}

	for _, count := range counts {
		b.Run(formatCount(count), func(b *testing.B) {
			ds := setupBenchmarkDataset(b, count)

			midBar, err := ds.At(count / 2)
			if err != nil {
				b.Fatal(err)
			}

			// Off-grid timestamp forces the search to land between bars
			target := midBar.Time.Add(-time.Hour)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := ds.CeilIndex(target)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPercentChange benchmarks the outcome computation for one period
func BenchmarkPercentChange(b *testing.B) {
	counts := []int{100, 1000, 10000}

	for _, count := range counts {
		b.Run(formatCount(count), func(b *testing.B) {
			ds := setupBenchmarkDataset(b, count)
			mid := count / 2

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := ds.PercentChange(mid)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkNewDataset benchmarks validation and copying at construction time
func BenchmarkNewDataset(b *testing.B) {
	counts := []int{100, 1000, 10000}

	for _, count := range counts {
		b.Run(formatCount(count), func(b *testing.B) {
			gen := mocks.NewDataGenerator(42)
			config := mocks.DefaultConfig()
			config.Count = count
			bars := gen.Generate(config)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := dataset.New("BENCH", bars)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkReplayScan simulates the replay pattern: one outcome lookup per bar
// across a full 10k series
func BenchmarkReplayScan(b *testing.B) {
	ds, err := mocks.Generate10K("BENCH")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 1; j < ds.Len(); j++ {
			if _, err := ds.PercentChange(j); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func formatCount(count int) string {
	switch {
	case count >= 10000:
		return "10k"
	case count >= 1000:
		return "1k"
	default:
		return "100"
	}
}
