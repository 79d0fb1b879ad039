// Package chains is the registry of networks a Safe can be deployed to.
package chains

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed chains.yaml
var defaultYAML []byte

var ErrUnknownChain = errors.New("unknown chain")

type (
	Chain struct {
		Name        string   `yaml:"name"`
		DisplayName string   `yaml:"display_name"`
		Aliases     []string `yaml:"aliases,omitempty"`
		ID          uint64   `yaml:"id"`
		RPCURL      string   `yaml:"rpc_url"`
	}

	// Registry resolves chain names and aliases, case-insensitively.
	Registry struct {
		chains []Chain
		index  map[string]int
	}

	file struct {
		Chains []Chain `yaml:"chains"`
	}
)

func (c Chain) String() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Default returns a fresh copy of the built-in registry.
func Default() *Registry {
	r, err := Load(bytes.NewReader(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("load built-in chains: %v", err))
	}
	return r
}

func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode chains: %w", err)
	}
	if len(f.Chains) == 0 {
		return nil, errors.New("no chains defined")
	}

	reg := &Registry{index: make(map[string]int)}
	for _, c := range f.Chains {
		if err := reg.add(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) add(c Chain) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("chain without name")
	}
	if c.ID == 0 {
		return fmt.Errorf("chain %s: missing id", c.Name)
	}
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("chain %s: missing rpc_url", c.Name)
	}

	i := len(r.chains)
	for _, key := range append([]string{c.Name}, c.Aliases...) {
		key = strings.ToLower(key)
		if _, ok := r.index[key]; ok {
			return fmt.Errorf("chain %s: duplicate name or alias %q", c.Name, key)
		}
		r.index[key] = i
	}
	r.chains = append(r.chains, c)
	return nil
}

func (r *Registry) Resolve(name string) (Chain, error) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %s", ErrUnknownChain, name)
	}
	return r.chains[i], nil
}

// Override replaces the RPC URL used for name.
func (r *Registry) Override(name, rpcURL string) error {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChain, name)
	}
	if strings.TrimSpace(rpcURL) == "" {
		return fmt.Errorf("chain %s: empty rpc url", name)
	}
	r.chains[i].RPCURL = strings.TrimSpace(rpcURL)
	return nil
}

// All returns the chains in file order.
func (r *Registry) All() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	return out
}
