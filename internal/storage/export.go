package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    *RunMetadata `json:"run"`
	Times  []float64    `json:"times"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportBody struct {
	Name              string       `json:"name"`
	Positions         [][3]float64 `json:"positions"`
	Velocities        [][3]float64 `json:"velocities"`
	AngularVelocities [][3]float64 `json:"angular_velocities"`
	Sleeping          []bool       `json:"sleeping"`
}

// ExportJSON writes a run and its trajectory as one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *Trajectory) error {
	data := ExportData{
		Run:    meta,
		Times:  traj.Times,
		Bodies: make([]ExportBody, len(traj.Tracks)),
	}
	for i, tr := range traj.Tracks {
		b := ExportBody{
			Name:              tr.Body,
			Positions:         make([][3]float64, len(tr.Positions)),
			Velocities:        make([][3]float64, len(tr.Velocities)),
			AngularVelocities: make([][3]float64, len(tr.AngularVelocities)),
			Sleeping:          tr.Sleeping,
		}
		for j := range tr.Positions {
			b.Positions[j] = tr.Positions[j]
			b.Velocities[j] = tr.Velocities[j]
			b.AngularVelocities[j] = tr.AngularVelocities[j]
		}
		data.Bodies[i] = b
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
