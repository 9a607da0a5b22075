package memory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/hiring-workflow/internal/domain"
)

type seedFile struct {
	Users []struct {
		ID         string `yaml:"id"`
		GlobalRole string `yaml:"global_role"`
	} `yaml:"users"`
	Companies []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"companies"`
	Jobs []struct {
		ID        string `yaml:"id"`
		CompanyID string `yaml:"company_id"`
		Title     string `yaml:"title"`
	} `yaml:"jobs"`
	Memberships []struct {
		CompanyID string `yaml:"company_id"`
		UserID    string `yaml:"user_id"`
		Role      string `yaml:"role"`
	} `yaml:"memberships"`
}

// LoadSeedFile reads a YAML fixture file into a Seed.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes YAML fixtures and checks that every reference resolves.
func LoadSeed(r io.Reader) (Seed, error) {
	var raw seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	var seed Seed
	users := make(map[string]bool, len(raw.Users))
	for _, u := range raw.Users {
		role := domain.GlobalRole(u.GlobalRole)
		if u.ID == "" || !role.Valid() {
			return Seed{}, fmt.Errorf("seed user %q: invalid id or global_role %q", u.ID, u.GlobalRole)
		}
		users[u.ID] = true
		seed.Users = append(seed.Users, domain.Actor{ID: u.ID, GlobalRole: role})
	}

	companies := make(map[string]bool, len(raw.Companies))
	for _, c := range raw.Companies {
		if c.ID == "" {
			return Seed{}, fmt.Errorf("seed company without id")
		}
		companies[c.ID] = true
		seed.Companies = append(seed.Companies, domain.Company{ID: c.ID, Name: c.Name})
	}

	for _, j := range raw.Jobs {
		if j.ID == "" || !companies[j.CompanyID] {
			return Seed{}, fmt.Errorf("seed job %q: unknown company %q", j.ID, j.CompanyID)
		}
		seed.Jobs = append(seed.Jobs, domain.Job{ID: j.ID, CompanyID: j.CompanyID, Title: j.Title})
	}

	for _, m := range raw.Memberships {
		role := domain.MemberRole(m.Role)
		switch {
		case !companies[m.CompanyID]:
			return Seed{}, fmt.Errorf("seed membership: unknown company %q", m.CompanyID)
		case !users[m.UserID]:
			return Seed{}, fmt.Errorf("seed membership: unknown user %q", m.UserID)
		case !role.Valid():
			return Seed{}, fmt.Errorf("seed membership %s/%s: invalid role %q", m.CompanyID, m.UserID, m.Role)
		}
		seed.Memberships = append(seed.Memberships, domain.Membership{CompanyID: m.CompanyID, UserID: m.UserID, Role: role})
	}
	return seed, nil
}
