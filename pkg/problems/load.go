package problems

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Instance is implemented by every instance type of this package.
type Instance interface {
	Validate() error
}

// LoadKnapsack reads a knapsack instance from a YAML file.
func LoadKnapsack(path string) (*Knapsack, error) {
	k := new(Knapsack)
	return k, load(path, k)
}

// LoadTSP reads a TSP instance from a YAML file.
func LoadTSP(path string) (*TSP, error) {
	t := new(TSP)
	return t, load(path, t)
}

// LoadGolomb reads a Golomb ruler instance from a YAML file.
func LoadGolomb(path string) (*Golomb, error) {
	g := new(Golomb)
	return g, load(path, g)
}

func load(path string, into Instance) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "couldn't load instance file (%s)", path)
	}
	return Parse(b, into)
}

// Parse decodes a YAML instance into one of the instance types and
// validates it.
func Parse(data []byte, into Instance) error {
	if err := yaml.UnmarshalStrict(data, into); err != nil {
		return errors.Wrap(err, "invalid instance")
	}
	return into.Validate()
}
