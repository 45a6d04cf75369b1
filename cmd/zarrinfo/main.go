// Metadata/chunk-inventory diagnostic tool, reading a zarr.json
// descriptor straight off disk.
package main

import (
	"fmt"
	"os"

	"github.com/rmalhotra/zarrcore/array"
	"github.com/rmalhotra/zarrcore/selection"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: zarrinfo <zarr.json>")
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("=== Analyzing %s ===\n\n", filename)

	raw, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("ERROR: Failed to read file: %v\n", err)
		os.Exit(1)
	}

	var meta array.Metadata
	if err := meta.UnmarshalJSON(raw); err != nil {
		fmt.Printf("ERROR: Invalid metadata: %v\n", err)
		os.Exit(1)
	}

	printMetadata(meta)
}

func printMetadata(meta array.Metadata) {
	fmt.Printf("Shape:       %v\n", meta.Shape)
	fmt.Printf("Data type:   %s\n", meta.DataType)
	fmt.Printf("Chunk shape: %v\n", meta.ChunkShape)
	fmt.Printf("Chunk keys:  %s (separator %q)\n", meta.ChunkKeyEncoding.Name, meta.ChunkKeyEncoding.Separator)
	if len(meta.DimensionNames) > 0 {
		fmt.Printf("Dimensions:  %v\n", meta.DimensionNames)
	}

	fv, err := meta.FillValue()
	if err != nil {
		fmt.Printf("Fill value:  ERROR: %v\n", err)
	} else {
		fmt.Printf("Fill value:  %v\n", fv.Scalar())
	}

	fmt.Println()
	fmt.Println("Codec pipeline:")
	pipeline, err := meta.BuildPipeline()
	if err != nil {
		fmt.Printf("  ERROR: %v\n", err)
	} else {
		for _, d := range pipeline.Descriptors() {
			if len(d.Configuration) > 0 {
				fmt.Printf("  - %s %v\n", d.Name, d.Configuration)
			} else {
				fmt.Printf("  - %s\n", d.Name)
			}
		}
		if pipeline.IsSharded() {
			fmt.Println("  (sharded: inner chunk grid is this codec's own configuration)")
		}
	}

	if len(meta.Shape) == 0 {
		fmt.Println()
		fmt.Println("Chunk grid: rank-0 (single scalar chunk)")
		return
	}

	perAxis := selection.NumChunksPerAxis(meta.Shape, meta.ChunkShape)
	total := int64(1)
	for _, n := range perAxis {
		total *= n
	}
	fmt.Println()
	fmt.Printf("Chunk grid:  %v chunks per axis, %d total\n", perAxis, total)

	if len(meta.Attributes) > 0 {
		fmt.Println()
		fmt.Printf("Attributes:  %v\n", meta.Attributes)
	}
}
