package types

// WorkoutTemplate is an externally authored exercise program. Templates
// are not database rows: they are loaded from YAML seed files into an
// in-process library and referenced from sessions by slug.
type WorkoutTemplate struct {
	Slug   string         `yaml:"slug" json:"slug"`
	Name   string         `yaml:"name" json:"name"`
	Blocks []WorkoutBlock `yaml:"blocks" json:"blocks"`
}

type WorkoutBlock struct {
	Name      string             `yaml:"name" json:"name"`
	Rounds    int                `yaml:"rounds" json:"rounds"`
	Exercises []TemplateExercise `yaml:"exercises" json:"exercises"`
}

type TemplateExercise struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	WorkSeconds int    `yaml:"work_seconds" json:"work_seconds"`
	RestSeconds int    `yaml:"rest_seconds" json:"rest_seconds"`
}

// ExerciseAt returns the exercise at the given block/exercise indices, or
// nil when either index is out of range.
func (t *WorkoutTemplate) ExerciseAt(block, exercise int) *TemplateExercise {
	if t == nil || block < 0 || block >= len(t.Blocks) {
		return nil
	}
	b := t.Blocks[block]
	if exercise < 0 || exercise >= len(b.Exercises) {
		return nil
	}
	return &b.Exercises[exercise]
}
