package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dii/internal/model"
)

// profileFlags are the company profile flags shared by classify, assess and
// scenario.
type profileFlags struct {
	name        string
	industry    string
	description string
	domain      string
	country     string
	employees   int
	stores      bool
	b2b         bool
	regulated   bool
	critical    bool
	signals     []string
	archetype   string
	answers     []string
	inputFile   string
}

func (p *profileFlags) register(cmd *cobra.Command, withAnswers bool) {
	cmd.Flags().StringVar(&p.name, "name", "", "company name")
	cmd.Flags().StringVar(&p.industry, "industry", "", "industry, e.g. \"Banking\"")
	cmd.Flags().StringVar(&p.description, "description", "", "short description of the business")
	cmd.Flags().StringVar(&p.domain, "domain", "", "company domain")
	cmd.Flags().StringVar(&p.country, "country", "", "headquarters country")
	cmd.Flags().IntVar(&p.employees, "employees", 0, "number of employees")
	cmd.Flags().BoolVar(&p.stores, "physical-stores", false, "operates physical stores")
	cmd.Flags().BoolVar(&p.b2b, "b2b", false, "sells mainly to businesses")
	cmd.Flags().BoolVar(&p.regulated, "regulated", false, "under regulatory oversight")
	cmd.Flags().BoolVar(&p.critical, "critical-infra", false, "operates critical infrastructure")
	cmd.Flags().StringSliceVar(&p.signals, "signal", nil, "asserted classification signal id (repeatable)")
	cmd.Flags().StringVar(&p.archetype, "archetype", "", "business model archetype id or slug; skips classification")
	cmd.Flags().StringVarP(&p.inputFile, "input", "i", "", "YAML or JSON file with a full assessment input")
	if withAnswers {
		cmd.Flags().StringArrayVarP(&p.answers, "answer", "a", nil, "raw metric answer DIM=VALUE, e.g. TRD=12 or AER=150000 (repeatable)")
	}
}

// input builds the assessment input. Flags override values from --input.
func (p *profileFlags) input(url string) (model.AssessmentInput, error) {
	var in model.AssessmentInput
	if p.inputFile != "" {
		data, err := os.ReadFile(p.inputFile)
		if err != nil {
			return in, fmt.Errorf("read input: %w", err)
		}
		// YAML is a superset of JSON
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse input %s: %w", p.inputFile, err)
		}
	}

	if url != "" {
		in.URL = url
	}
	setString(&in.Profile.Name, p.name)
	setString(&in.Profile.Industry, p.industry)
	setString(&in.Profile.Description, p.description)
	setString(&in.Profile.Domain, p.domain)
	setString(&in.Profile.Country, p.country)
	if p.employees > 0 {
		in.Profile.Employees = p.employees
	}
	in.Profile.HasPhysicalStores = in.Profile.HasPhysicalStores || p.stores
	in.Profile.IsB2B = in.Profile.IsB2B || p.b2b
	in.Profile.IsRegulated = in.Profile.IsRegulated || p.regulated
	in.Profile.CriticalInfrastructure = in.Profile.CriticalInfrastructure || p.critical
	in.Profile.Signals = append(in.Profile.Signals, p.signals...)

	if p.archetype != "" {
		id, err := model.ParseArchetypeID(p.archetype)
		if err != nil {
			return in, err
		}
		in.Archetype = id
	}

	answers, err := parseAnswers(p.answers)
	if err != nil {
		return in, err
	}
	for d, v := range answers {
		if in.Answers == nil {
			in.Answers = make(map[model.Dimension]float64, model.DimensionCount)
		}
		in.Answers[d] = v
	}
	return in, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseAnswers reads DIM=VALUE pairs
func parseAnswers(pairs []string) (map[model.Dimension]float64, error) {
	out := make(map[model.Dimension]float64, len(pairs))
	for _, pair := range pairs {
		tag, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q: expected DIM=VALUE", pair)
		}
		d, err := model.ParseDimension(tag)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", pair, err)
		}
		out[d] = v
	}
	return out, nil
}
