package model

const (
	// MaxLevel is the top of the reinforcement ladder.
	MaxLevel = 25
	// DefaultAnchor is the level a reset transition jumps to.
	DefaultAnchor = 10
)

// Step holds the outcome probabilities of one attempt at level i (i -> i+1).
type Step struct {
	Succeed float64 `yaml:"succeed"`
	Stay    float64 `yaml:"stay"`
	Regress float64 `yaml:"regress"` // to i-1
	Reset   float64 `yaml:"reset"`   // to the anchor level
}

func (s Step) sum() float64 { return s.Succeed + s.Stay + s.Regress + s.Reset }

// DefaultSteps is the published reinforcement table, index i = level i -> i+1.
var DefaultSteps = [MaxLevel]Step{
	{Succeed: 0.9975, Stay: 0.0025},                   // 0
	{Succeed: 0.9450, Stay: 0.0550},                   // 1
	{Succeed: 0.8925, Stay: 0.1075},                   // 2
	{Succeed: 0.8925, Stay: 0.1075},                   // 3
	{Succeed: 0.8400, Stay: 0.1600},                   // 4
	{Succeed: 0.7875, Stay: 0.2125},                   // 5
	{Succeed: 0.7350, Stay: 0.2650},                   // 6
	{Succeed: 0.6825, Stay: 0.3175},                   // 7
	{Succeed: 0.6300, Stay: 0.3700},                   // 8
	{Succeed: 0.5775, Stay: 0.4225},                   // 9
	{Succeed: 0.5250, Stay: 0.4750},                   // 10
	{Succeed: 0.4725, Regress: 0.5275},                // 11
	{Succeed: 0.4200, Regress: 0.5742, Reset: 0.0058}, // 12
	{Succeed: 0.3675, Regress: 0.6198, Reset: 0.0126}, // 13
	{Succeed: 0.3150, Regress: 0.6713, Reset: 0.0137}, // 14
	{Succeed: 0.3150, Stay: 0.6644, Reset: 0.0206},    // 15
	{Succeed: 0.3150, Regress: 0.6644, Reset: 0.0206}, // 16
	{Succeed: 0.3150, Regress: 0.6644, Reset: 0.0206}, // 17
	{Succeed: 0.3150, Regress: 0.6576, Reset: 0.0274}, // 18
	{Succeed: 0.3150, Regress: 0.6576, Reset: 0.0274}, // 19
	{Succeed: 0.3150, Stay: 0.6165, Reset: 0.0685},    // 20
	{Succeed: 0.3150, Regress: 0.6165, Reset: 0.0685}, // 21
	{Succeed: 0.0315, Regress: 0.7748, Reset: 0.1937}, // 22
	{Succeed: 0.0210, Regress: 0.6853, Reset: 0.2937}, // 23
	{Succeed: 0.0105, Regress: 0.5937, Reset: 0.3958}, // 24
}

// Odds maps tool -> target tier -> single-attempt advance probability.
type Odds map[Tool]map[Tier]float64

// DefaultOdds is the published tier-up table. The tier key is the tier being
// advanced into.
var DefaultOdds = Odds{
	Primary:   {Epic: 0.06, Unique: 0.018, Legendary: 0.003},
	Secondary: {Epic: 0.15, Unique: 0.035, Legendary: 0.01},
	Auxiliary: {Epic: 0.0476, Unique: 0.0196, Legendary: 0.005},
}
