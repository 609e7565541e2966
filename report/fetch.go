package report

import (
	"time"

	"risk-insight/config"
	"risk-insight/dune"
	"risk-insight/logging"
)

// DataSource fournit toutes les tables du rapport. Le contrat : chaque
// clé de DatasetKeys est présente en sortie, table vide au pire, et
// VaultLiquidity contient une entrée par vault demandé.
type DataSource interface {
	FetchAll(vaults []config.Vault) (*Data, error)
}

// Ordre fixe des requêtes SQL ad-hoc (clé de dataset = nom de requête).
var customQueryOrder = []string{
	KeyWeeklySummary,
	KeyDailyLiquidations,
	KeyLiquidationsByChain,
	KeyBadDebtByChain,
}

// DuneSource tire les tables du rapport de l'API Dune.
type DuneSource struct {
	client *dune.Client
	cfg    *config.ReportConfig
	logger *logging.Logger
}

// NewDuneSource échoue uniquement si la clé manque (précondition,
// avant tout fetch).
func NewDuneSource(apiKey string, rcfg *config.ReportConfig, logger *logging.Logger) (*DuneSource, error) {
	client, err := dune.NewClient(
		apiKey,
		rcfg.Dune.HostURL,
		time.Duration(rcfg.Dune.PollIntervalSeconds)*time.Second,
		time.Duration(rcfg.Dune.MaxWaitSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	return &DuneSource{client: client, cfg: rcfg, logger: logger}, nil
}

// FetchAll n'échoue jamais : toute erreur sur un dataset individuel est
// loggée et remplacée par une table vide.
func (s *DuneSource) FetchAll(vaults []config.Vault) (*Data, error) {
	d := NewData()

	for _, name := range customQueryOrder {
		sql, ok := s.cfg.CustomQueries[name]
		if !ok {
			s.logger.Writef("[WARN] dataset=%s: no custom query configured", name)
			d.Tables[name] = Table{}
			continue
		}
		rows, err := s.client.ExecuteSQL(sql)
		if err != nil {
			s.logger.Writef("[WARN] dataset=%s: %v", name, err)
			d.Tables[name] = Table{}
			continue
		}
		d.Tables[name] = toTable(rows)
	}

	for name, queryID := range s.cfg.QueryIDs {
		rows, err := s.client.GetLatestResult(queryID)
		if err != nil {
			s.logger.Writef("[WARN] dataset=%s: %v", name, err)
			d.Tables[name] = Table{}
			continue
		}
		d.Tables[name] = toTable(rows)
	}

	// Toute clé attendue non couverte par la config reste définie.
	for _, key := range DatasetKeys {
		if _, ok := d.Tables[key]; !ok {
			d.Tables[key] = Table{}
		}
	}

	for _, v := range vaults {
		rows, err := s.client.GetLatestResult(v.QueryID)
		if err != nil {
			s.logger.Writef("[WARN] vault=%s: %v", v.Name, err)
			d.VaultLiquidity[v.Name] = Table{}
			continue
		}
		d.VaultLiquidity[v.Name] = toTable(rows)
	}

	d.normalize()
	return d, nil
}

func toTable(rows []map[string]interface{}) Table {
	t := make(Table, 0, len(rows))
	for _, r := range rows {
		t = append(t, Row(r))
	}
	return t
}
