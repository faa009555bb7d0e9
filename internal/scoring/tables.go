package scoring

import "talentgate/internal/athlete"

var percentileMultipliers = map[athlete.TestType]float64{
	athlete.TestSpeed:       1.10,
	athlete.TestAgility:     1.00,
	athlete.TestStrength:    0.95,
	athlete.TestEndurance:   1.05,
	athlete.TestFlexibility: 0.90,
	athlete.TestBalance:     1.00,
}

type benchmarkBase struct {
	peer  int
	elite int
}

// sportAverageLift is how far sport-specific averages sit above peers.
const sportAverageLift = 5

var benchmarkTable = map[athlete.TestType]benchmarkBase{
	athlete.TestSpeed:       {peer: 65, elite: 92},
	athlete.TestAgility:     {peer: 62, elite: 90},
	athlete.TestStrength:    {peer: 60, elite: 88},
	athlete.TestEndurance:   {peer: 63, elite: 90},
	athlete.TestFlexibility: {peer: 58, elite: 85},
	athlete.TestBalance:     {peer: 64, elite: 88},
}

type recommendationRule struct {
	below int
	rec   Recommendation
}

var recommendationTable = map[athlete.TestType]recommendationRule{
	athlete.TestSpeed: {below: 70, rec: Recommendation{
		Category:    string(athlete.TestSpeed),
		Title:       "Speed Development Program",
		Description: "Build acceleration and top-end speed through sprint mechanics and plyometrics.",
		Exercises:   []string{"30m acceleration sprints", "Bounding drills", "Resisted sled sprints", "A-skips and B-skips"},
		Priority:    PriorityHigh,
		Duration:    "6 weeks",
	}},
	athlete.TestAgility: {below: 65, rec: Recommendation{
		Category:    string(athlete.TestAgility),
		Title:       "Agility and Change of Direction",
		Description: "Sharpen footwork and deceleration with ladder and cone patterns.",
		Exercises:   []string{"Agility ladder patterns", "T-drill", "5-10-5 shuttle", "Reactive cone drills"},
		Priority:    PriorityMedium,
		Duration:    "4 weeks",
	}},
	athlete.TestStrength: {below: 60, rec: Recommendation{
		Category:    string(athlete.TestStrength),
		Title:       "Foundational Strength Building",
		Description: "Develop base strength with progressive bodyweight and compound movements.",
		Exercises:   []string{"Goblet squats", "Push-up progressions", "Inverted rows", "Plank variations"},
		Priority:    PriorityHigh,
		Duration:    "8 weeks",
	}},
	athlete.TestEndurance: {below: 65, rec: Recommendation{
		Category:    string(athlete.TestEndurance),
		Title:       "Aerobic Base Development",
		Description: "Extend aerobic capacity with steady-state and interval conditioning.",
		Exercises:   []string{"Continuous 20-minute runs", "Fartlek sessions", "Interval shuttles", "Cycling intervals"},
		Priority:    PriorityMedium,
		Duration:    "6 weeks",
	}},
	athlete.TestFlexibility: {below: 60, rec: Recommendation{
		Category:    string(athlete.TestFlexibility),
		Title:       "Mobility and Flexibility Routine",
		Description: "Improve range of motion to support performance and reduce injury risk.",
		Exercises:   []string{"Dynamic hip openers", "Hamstring PNF stretching", "Thoracic rotations", "Yoga flow"},
		Priority:    PriorityHigh,
		Duration:    "Daily, 4 weeks",
	}},
	athlete.TestBalance: {below: 65, rec: Recommendation{
		Category:    string(athlete.TestBalance),
		Title:       "Balance and Stability Training",
		Description: "Strengthen proprioception and core control.",
		Exercises:   []string{"Single-leg stands", "Bosu ball squats", "Y-balance reaches", "Dead bugs"},
		Priority:    PriorityMedium,
		Duration:    "4 weeks",
	}},
}

var maintenanceBundle = Recommendation{
	Category:    "maintenance",
	Title:       "Performance Maintenance and Recovery",
	Description: "Hold current level while managing training load.",
	Exercises:   []string{"Sport-specific skill sessions", "Active recovery", "Sleep and nutrition tracking", "Deload week every fourth week"},
	Priority:    PriorityLow,
	Duration:    "Ongoing",
}

// sportAffinity lists the sports each test type is most predictive for,
// strongest first.
var sportAffinity = map[athlete.TestType][]string{
	athlete.TestSpeed:       {"athletics", "football", "hockey"},
	athlete.TestAgility:     {"badminton", "kabaddi", "football"},
	athlete.TestStrength:    {"wrestling", "weightlifting", "kabaddi"},
	athlete.TestEndurance:   {"athletics", "swimming", "cycling"},
	athlete.TestFlexibility: {"gymnastics", "swimming", "diving"},
	athlete.TestBalance:     {"gymnastics", "archery", "shooting"},
}

// affinityThreshold is the category score from which a test type
// contributes recommended sports.
const affinityThreshold = 70
