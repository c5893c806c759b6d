package parsec

// Shared fixture types. Each names one component or resource identity for
// the duration of the test binary.

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Static struct{}

type Health struct {
	Current, Max int
}

type ConfigRes struct {
	Gravity float64
}

type ScoreRes struct {
	Points int
}

// noopBody is a system body that does nothing.
func noopBody(res *ResourceView, queries []*Query, cmd *CommandBuffer, view *View) {}
