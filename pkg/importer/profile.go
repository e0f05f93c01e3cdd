package importer

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aplose/erp-migrate/pkg/dictionary"
	"gopkg.in/yaml.v3"
)

// Profile lists which legacy resources are read and how they are paged.
type Profile struct {
	DefaultLimit      int                      `yaml:"default_limit"`
	DefaultSortField  string                   `yaml:"default_sortfield"`
	Resources         map[string]ResourceQuery `yaml:"resources"`
	Dictionaries      []DictionarySource       `yaml:"dictionaries"`
	ProposalResources []string                 `yaml:"proposal_resources"`
	StagingResources  []string                 `yaml:"staging_resources"`
}

type ResourceQuery struct {
	Limit     int    `yaml:"limit"`
	SortField string `yaml:"sortfield"`
}

type DictionarySource struct {
	Resource string `yaml:"resource"`
	Type     string `yaml:"type"`
}

func DefaultProfile() Profile {
	return Profile{
		DefaultLimit:     5000,
		DefaultSortField: "rowid",
		Resources: map[string]ResourceQuery{
			ExtThirdParties: {Limit: 10000, SortField: "t.rowid"},
			ExtContacts:     {Limit: 10000, SortField: "rowid"},
			ExtProducts:     {Limit: 10000, SortField: "rowid"},
			ExtCategories:   {Limit: 1000},
		},
		Dictionaries: []DictionarySource{
			{Resource: "dictionnarycountries", Type: dictionary.TypeCountry},
			{Resource: "dictionnarycountry", Type: dictionary.TypeCountry},
			{Resource: "currencies", Type: dictionary.TypeCurrency},
			{Resource: "dictionnarycurs", Type: dictionary.TypeCurrency},
			{Resource: "civilities", Type: dictionary.TypeCivility},
			{Resource: "formejuridique", Type: dictionary.TypeLegalForm},
			{Resource: "paymentterms", Type: dictionary.TypePaymentMethod},
			{Resource: "payment_vat", Type: dictionary.TypePaymentMethod},
		},
		ProposalResources: []string{"propals", ExtProposals},
		StagingResources: []string{
			"supplier_orders",
			"supplier_proposals",
			"contracts",
			"projects",
			"tasks",
			"stock_movements",
			"expensereports",
			"trips",
			"holiday",
		},
	}
}

// LoadProfile reads a YAML profile over the defaults. An empty path returns
// the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return profile, err
	}
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return DefaultProfile(), fmt.Errorf("parsing import profile: %w", err)
	}
	if err := profile.validate(); err != nil {
		return DefaultProfile(), err
	}
	return profile, nil
}

func (p Profile) validate() error {
	if p.DefaultLimit <= 0 {
		return errors.New("import profile: default_limit must be positive")
	}
	if len(p.ProposalResources) == 0 {
		return errors.New("import profile: proposal_resources must not be empty")
	}
	for _, d := range p.Dictionaries {
		if d.Resource == "" || d.Type == "" {
			return errors.New("import profile: dictionary entries need resource and type")
		}
	}
	return nil
}

func (p Profile) isZero() bool {
	return p.DefaultLimit == 0 && p.DefaultSortField == "" && len(p.Resources) == 0 && len(p.Dictionaries) == 0 &&
		len(p.ProposalResources) == 0 && len(p.StagingResources) == 0
}

// Params builds the query string for one list call. Every list is sorted so
// large reads page in a stable order.
func (p Profile) Params(resource string) url.Values {
	limit := p.DefaultLimit
	sortField := p.DefaultSortField
	if q, ok := p.Resources[resource]; ok {
		if q.Limit > 0 {
			limit = q.Limit
		}
		if q.SortField != "" {
			sortField = q.SortField
		}
	}
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if sortField != "" {
		params.Set("sortfield", sortField)
	}
	return params
}
