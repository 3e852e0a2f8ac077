package config

type Report struct {
	CostBasis CostBasis `env:"REPORT_COST_BASIS" envDefault:"CURRENT"`
}

// CostBasis selects which product cost the dashboard uses for cost of goods.
type CostBasis uint8

const (
	// CostBasisCurrent uses the product's cost at query time.
	CostBasisCurrent CostBasis = iota
	// CostBasisSnapshot uses the cost recorded on the sale item.
	CostBasisSnapshot
)

var costBasisNames = []string{"CURRENT", "SNAPSHOT"}

func (b CostBasis) String() string {
	return enumName(costBasisNames, int(b))
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *CostBasis) UnmarshalText(text []byte) error {
	i, err := parseEnum("cost basis", costBasisNames, text)
	if err != nil {
		return err
	}
	*b = CostBasis(i)
	return nil
}

func (b CostBasis) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
