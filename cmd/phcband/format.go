package main

import (
	"fmt"

	"github.com/lightwell/phcband/pkg/sim"
)

func printJobSummary(job *sim.Job) {
	if job == nil {
		return
	}
	fmt.Printf("Job: %s\n", job.Name)
	fmt.Printf("  Working directory:  %s\n", job.WorkDir)
	fmt.Printf("  Bands:              %d\n", job.NumBands)
	fmt.Printf("  Resolution:         %d (mesh %d)\n", job.Resolution, job.MeshSize)
	if job.KSpace != nil {
		fmt.Printf("  K-points:           %d\n", job.KSpace.Len())
	}
	if job.Geometry != nil {
		fmt.Printf("  Objects:            %d\n", len(job.Geometry.Objects()))
		if job.Geometry.HasSubstrate() {
			fmt.Printf("  Substrate index:    %d\n", job.Geometry.SubstrateIndex())
		}
	}
}
