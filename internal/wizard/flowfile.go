package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

type flowFile struct {
	Flows map[string][]StepDescriptor `yaml:"flows"`
}

// ParseFlows reads a YAML flow file:
//
//	flows:
//	  solo:
//	    - key: profile
//	      label: Player
//	    - key: review
//
// Modes missing from the file keep their built-in flow. Labels, icons and
// owned fields default to the built-in values for the step key.
func ParseFlows(r io.Reader) (Flows, error) {
	var ff flowFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, configf("flow file is empty")
		}
		return nil, configf("decode flow file: %v", err)
	}

	names := make([]string, 0, len(ff.Flows))
	for name := range ff.Flows {
		names = append(names, name)
	}
	slices.Sort(names)

	flows := DefaultFlows()
	var errs error
	for _, name := range names {
		mode, err := ParseMode(name)
		if err != nil {
			errs = multierr.Append(errs, configf("flows: %v", err))
			continue
		}
		steps := ff.Flows[name]
		for i := range steps {
			steps[i] = withCatalogDefaults(steps[i])
		}
		steps = renumberSteps(steps)
		if err := validateFlow(mode, steps); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		flows[mode] = steps
	}
	if errs != nil {
		return nil, errs
	}
	return flows, nil
}

// LoadFlowsFile parses the flow file at path.
func LoadFlowsFile(path string) (Flows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flow file: %w", err)
	}
	defer f.Close()

	flows, err := ParseFlows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flows, nil
}

func withCatalogDefaults(st StepDescriptor) StepDescriptor {
	def, ok := stepCatalog[st.Key]
	if !ok {
		return st
	}
	if st.Label == "" {
		st.Label = def.Label
	}
	if st.Subtitle == "" {
		st.Subtitle = def.Subtitle
	}
	if st.Icon == "" {
		st.Icon = def.Icon
	}
	if st.Fields == nil {
		st.Fields = slices.Clone(def.Fields)
	}
	return st
}
