// Package taxonomy holds the static curriculum reference tables and the
// topic resolution logic the generation engine builds its prompts from.
package taxonomy

import "strconv"

// Band is a grade band used to index the topic tables.
type Band string

const (
	BandPrimary   Band = "1-5"
	BandMiddle    Band = "6-8"
	BandSecondary Band = "9-10"
	BandSenior    Band = "11-12"
)

// Boards returns the supported examination boards in display order.
func Boards() []string {
	return []string{"CBSE", "ICSE", "IB", "Cambridge IGCSE", "State Board"}
}

// GradeBand maps a grade string ("1".."12") to its band.
// Unparseable or out-of-range grades map to the senior band, which keeps
// resolution total for callers that pass free-form grade labels.
func GradeBand(grade string) Band {
	n, err := strconv.Atoi(grade)
	if err != nil {
		return BandSenior
	}
	switch {
	case n >= 1 && n <= 5:
		return BandPrimary
	case n >= 6 && n <= 8:
		return BandMiddle
	case n >= 9 && n <= 10:
		return BandSecondary
	default:
		return BandSenior
	}
}

// genericTopics is returned for any (subject, band) pair the tables do not
// cover, so the rest of the pipeline always has a non-empty topic pool.
var genericTopics = []string{"General Concepts", "Basic Principles", "Fundamental Topics"}

var topicsBySubject = map[string]map[Band][]string{
	"Mathematics": {
		BandPrimary:   {"Number Recognition", "Basic Arithmetic", "Shapes and Patterns", "Measurement", "Time and Money", "Simple Fractions", "Data Handling", "Problem Solving"},
		BandMiddle:    {"Integers", "Fractions and Decimals", "Algebra Basics", "Geometry", "Ratio and Proportion", "Percentage", "Data Handling", "Linear Equations"},
		BandSecondary: {"Number Systems", "Polynomials", "Linear Equations", "Quadratic Equations", "Arithmetic Progressions", "Triangles", "Coordinate Geometry", "Trigonometry", "Statistics", "Probability"},
		BandSenior:    {"Relations and Functions", "Trigonometric Functions", "Complex Numbers", "Linear Inequalities", "Conic Sections", "Limits and Derivatives", "Integrals", "Differential Equations", "Vectors", "Three Dimensional Geometry"},
	},
	"Science": {
		BandPrimary:   {"Living and Non-living", "Plants Around Us", "Animals Around Us", "Human Body", "Food and Health", "Weather and Climate", "Air and Water", "Simple Machines"},
		BandMiddle:    {"Food Components", "Fibre to Fabric", "Sorting Materials", "Light Shadows and Reflections", "Motion and Measurement", "Living Organisms", "Water", "Forests Our Lifeline"},
		BandSecondary: {"Matter in Our Surroundings", "Atoms and Molecules", "Structure of the Atom", "Life Processes", "Control and Coordination", "Heredity and Evolution", "Light Reflection and Refraction", "Electricity", "Magnetic Effects of Electric Current"},
		BandSenior:    {"Physical World", "Units and Measurements", "Laws of Motion", "Work Energy and Power", "Gravitation", "Thermal Properties of Matter", "Kinetic Theory", "Thermodynamics", "Oscillations", "Waves"},
	},
	"English": {
		BandPrimary:   {"Letter Recognition", "Phonics", "Vocabulary Building", "Simple Sentences", "Story Reading", "Basic Grammar", "Creative Writing", "Listening Skills"},
		BandMiddle:    {"Reading Comprehension", "Grammar Rules", "Vocabulary Expansion", "Essay Writing", "Poetry Appreciation", "Story Writing", "Letter Writing", "Speaking Skills"},
		BandSecondary: {"Literature Study", "Prose Analysis", "Poetry Analysis", "Drama Study", "Grammar and Usage", "Composition Writing", "Functional English", "Communication Skills"},
		BandSenior:    {"Advanced Literature", "Literary Criticism", "World Literature", "Language Study", "Creative Writing", "Research Skills", "Communication Skills", "Media Studies"},
	},
	"Social Science": {
		BandMiddle:    {"History - Our Past", "Geography - Earth Our Habitat", "Civics - Social and Political Life", "Economics - Economic Life"},
		BandSecondary: {"History - India and Contemporary World", "Geography - Contemporary India", "Political Science - Democratic Politics", "Economics - Understanding Economic Development"},
		BandSenior:    {"History - Themes in World History", "Geography - Fundamentals of Human Geography", "Political Science - Political Theory", "Economics - Indian Economic Development"},
	},
	"Physics": {
		BandSenior: {"Physical World", "Units and Measurements", "Laws of Motion", "Work Energy Power", "Gravitation", "Thermodynamics", "Oscillations", "Waves", "Current Electricity", "Electromagnetic Induction", "Ray Optics", "Dual Nature of Radiation", "Atoms", "Nuclei", "Semiconductor Electronics"},
	},
	"Chemistry": {
		BandSenior: {"Basic Concepts of Chemistry", "Structure of Atom", "Classification of Elements", "Chemical Bonding", "States of Matter", "Thermodynamics", "Equilibrium", "Redox Reactions", "Organic Chemistry Principles", "Hydrocarbons", "Solutions", "Electrochemistry", "Chemical Kinetics", "Coordination Compounds", "Biomolecules", "Polymers"},
	},
	"Biology": {
		BandSenior: {"Living World", "Biological Classification", "Plant Kingdom", "Animal Kingdom", "Cell Unit of Life", "Biomolecules", "Photosynthesis", "Human Reproduction", "Principles of Inheritance", "Molecular Basis of Inheritance", "Evolution", "Human Health and Disease", "Biotechnology Principles", "Ecosystem", "Biodiversity and Conservation"},
	},
}

// ResolveTopics returns the ordered topic pool for a subject and grade band.
// It is total: unknown pairs resolve to a fixed generic list, never an empty
// slice and never an error. Callers must not mutate the returned slice.
func ResolveTopics(subject string, band Band) []string {
	bands, ok := topicsBySubject[subject]
	if !ok {
		return genericTopics
	}
	topics, ok := bands[band]
	if !ok {
		return genericTopics
	}
	return topics
}

// Subjects returns the subjects with topic coverage for the given band,
// in table order.
func Subjects(band Band) []string {
	var out []string
	for _, s := range subjectOrder {
		if _, ok := topicsBySubject[s][band]; ok {
			out = append(out, s)
		}
	}
	return out
}

var subjectOrder = []string{"Mathematics", "Science", "English", "Social Science", "Physics", "Chemistry", "Biology"}
