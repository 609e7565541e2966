package config

import (
	"os"
	"path/filepath"
	"strings"

	"risk-insight/utils"

	"gopkg.in/yaml.v3"
)

// Vault, un vault suivi dans la section liquidité du rapport.
// QueryID pointe sur la requête Dune qui fournit sa série horaire.
type Vault struct {
	Name    string `yaml:"name"`
	Chain   string `yaml:"chain"`
	QueryID int    `yaml:"query_id"`
}

type ReportConfig struct {
	Dune struct {
		HostURL             string `yaml:"host_url"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
		MaxWaitSeconds      int    `yaml:"max_wait_seconds"`
	} `yaml:"dune"`
	// QueryIDs : résultats déjà en cache côté Dune (un GET suffit)
	QueryIDs map[string]int `yaml:"query_ids"`
	// CustomQueries : SQL ad-hoc exécuté à chaque rapport (submit + poll)
	CustomQueries map[string]string `yaml:"custom_queries"`
	Vaults      VaultGroups       `yaml:"vaults"`
	ChainColors map[string]string `yaml:"chain_colors"`
}

// VaultGroups sépare les vaults par profil de risque ; l'ordre des
// groupes est l'ordre des sections du rapport.
type VaultGroups struct {
	Bluechip []Vault `yaml:"bluechip"`
	LongTail []Vault `yaml:"long_tail"`
}

const defaultChainColor = "#8B949E"

// ChainColor retourne la couleur de marque d'une chaîne, avec fallback.
func (rc *ReportConfig) ChainColor(chain string) string {
	if c, ok := rc.ChainColors[strings.ToLower(chain)]; ok {
		return c
	}
	return defaultChainColor
}

// AllVaults retourne bluechip + long tail, dans cet ordre.
func (rc *ReportConfig) AllVaults() []Vault {
	out := make([]Vault, 0, len(rc.Vaults.Bluechip)+len(rc.Vaults.LongTail))
	out = append(out, rc.Vaults.Bluechip...)
	out = append(out, rc.Vaults.LongTail...)
	return out
}

// SelectVaults filtre les vaults configurés par nom. Une liste vide
// sélectionne tout.
func (rc *ReportConfig) SelectVaults(names []string) []Vault {
	if len(names) == 0 {
		return rc.AllVaults()
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []Vault
	for _, v := range rc.AllVaults() {
		if wanted[v.Name] {
			out = append(out, v)
		}
	}
	return out
}

func LoadReportConfig(file string) (*ReportConfig, error) {
	var rc ReportConfig
	root := utils.GetProjectRoot()
	cfgPath := filepath.Join(root, file)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, err
	}
	if rc.Dune.HostURL == "" {
		rc.Dune.HostURL = "https://api.dune.com/api/v1"
	}
	if rc.Dune.PollIntervalSeconds <= 0 {
		rc.Dune.PollIntervalSeconds = 2
	}
	if rc.Dune.MaxWaitSeconds <= 0 {
		rc.Dune.MaxWaitSeconds = 120
	}
	return &rc, nil
}
