package market

import (
	"strings"

	"market-dashboard/src/models"
)

// Status messages recorded in the registry.
const (
	MessageQuoteAvailable = "Quote available"
	MessageNoQuoteData    = "No quote data returned"
	MessageNoKey          = "API key not set"
	MessagePending        = "Waiting for quote fetch"
	UnknownSector         = "Unknown"
)

// DefaultWatchlist is the built-in list of NSE power-sector equities.
var DefaultWatchlist = []models.MCompany{
	{Symbol: "NSE:NTPC-EQ", Name: "NTPC Limited", Sector: "Power Generation"},
	{Symbol: "NSE:NHPC-EQ", Name: "NHPC Limited", Sector: "Hydro Power"},
	{Symbol: "NSE:TATAPOWER-EQ", Name: "Tata Power Company Limited", Sector: "Power Generation"},
	{Symbol: "NSE:ADANIPOWER-EQ", Name: "Adani Power Limited", Sector: "Thermal Power"},
	{Symbol: "NSE:ADANIGREEN-EQ", Name: "Adani Green Energy Limited", Sector: "Renewables"},
	{Symbol: "NSE:POWERGRID-EQ", Name: "Power Grid Corporation of India Limited", Sector: "Transmission"},
	{Symbol: "NSE:JSWENERGY-EQ", Name: "JSW Energy Limited", Sector: "Power Generation"},
	{Symbol: "NSE:RENEW-EQ", Name: "ReNew Energy Global plc", Sector: "Renewables"},
	{Symbol: "NSE:RPOWER-EQ", Name: "Reliance Power Limited", Sector: "Power Generation"},
}

// -----------------------------------------------------------------------------

// Companies is the watchlist with its static metadata.
type Companies struct {
	list     []models.MCompany
	bySymbol map[string]models.MCompany
}

// NewCompanies builds the watchlist. An empty list selects DefaultWatchlist.
// Entries without a name or sector get synthesized values.
func NewCompanies(list []models.MCompany) *Companies {
	if len(list) == 0 {
		list = DefaultWatchlist
	}

	c := &Companies{bySymbol: make(map[string]models.MCompany, len(list))}
	for _, company := range list {
		company.Symbol = strings.TrimSpace(company.Symbol)
		if company.Symbol == "" {
			continue
		}
		if _, dup := c.bySymbol[company.Symbol]; dup {
			continue
		}
		synth := SynthesizeCompany(company.Symbol)
		if company.Name == "" {
			company.Name = synth.Name
		}
		if company.Sector == "" {
			company.Sector = synth.Sector
		}
		c.list = append(c.list, company)
		c.bySymbol[company.Symbol] = company
	}
	return c
}

// -----------------------------------------------------------------------------

// SynthesizeCompany derives metadata from the symbol: NSE:FOO-EQ -> FOO.
func SynthesizeCompany(symbol string) models.MCompany {
	name := symbol
	if _, rest, found := strings.Cut(name, ":"); found {
		name = rest
	}
	if i := strings.LastIndex(name, "-"); i > 0 {
		name = name[:i]
	}
	return models.MCompany{Symbol: symbol, Name: name, Sector: UnknownSector}
}

// -----------------------------------------------------------------------------

func (c *Companies) List() []models.MCompany {
	out := make([]models.MCompany, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Companies) Symbols() []string {
	out := make([]string, 0, len(c.list))
	for _, company := range c.list {
		out = append(out, company.Symbol)
	}
	return out
}

func (c *Companies) Contains(symbol string) bool {
	_, ok := c.bySymbol[symbol]
	return ok
}

// Metadata returns the known record or a synthesized one.
func (c *Companies) Metadata(symbol string) models.MCompany {
	if company, ok := c.bySymbol[symbol]; ok {
		return company
	}
	return SynthesizeCompany(symbol)
}

// WithStatus merges metadata with the registry. Symbols never polled
// report pending.
func (c *Companies) WithStatus(statuses *StatusRegistry) []models.MCompanyStatus {
	out := make([]models.MCompanyStatus, 0, len(c.list))
	for _, company := range c.list {
		entry := models.MCompanyStatus{
			MCompany:      company,
			Status:        models.StatusPending,
			StatusMessage: MessagePending,
		}
		if s, ok := statuses.Get(company.Symbol); ok {
			updated := s.UpdatedAt
			entry.Status = s.Status
			entry.StatusMessage = s.Message
			entry.StatusUpdatedAt = &updated
		}
		out = append(out, entry)
	}
	return out
}
