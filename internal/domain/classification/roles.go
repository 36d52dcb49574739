// Package classification assigns financial roles to the columns and rows of
// extracted tables. Column classification matches header labels first and
// falls back to content sniffing; row classification separates header and
// footer furniture from security rows.
package classification

// Role is the financial meaning of a table column.
type Role string

const (
	RoleIdentifier       Role = "identifier"
	RoleName             Role = "name"
	RoleQuantity         Role = "quantity"
	RolePrice            Role = "price"
	RoleAcquisitionPrice Role = "acquisition_price"
	RoleValue            Role = "value"
	RoleCurrency         Role = "currency"
	RoleWeight           Role = "weight"
	RolePerformance      Role = "performance"
	RoleCoupon           Role = "coupon"
	RoleDate             Role = "date"

	// RoleText marks a column that could not be classified; it contributes
	// nothing to security records. Ambiguity is not an error.
	RoleText Role = "text"
)

// rolePriority fixes the order labels are checked in, so an ambiguous header
// like "price value" resolves the same way every run.
var rolePriority = []Role{
	RoleIdentifier,
	RoleName,
	RoleQuantity,
	RolePrice,
	RoleAcquisitionPrice,
	RoleValue,
	RoleCurrency,
	RoleWeight,
	RolePerformance,
	RoleCoupon,
	RoleDate,
}

// roleLabels is the curated set of header label variants per role,
// multi-language the way real custodian statements are. Matching is
// case-insensitive on whitespace-normalized labels.
var roleLabels = map[Role][]string{
	RoleIdentifier: {
		"isin", "isin code", "code isin", "security id", "security code",
		"identifier", "instrument id", "valor", "wkn",
	},
	RoleName: {
		"name", "security name", "description", "security", "instrument",
		"designation", "libellé", "bezeichnung", "descrição", "holding",
	},
	RoleQuantity: {
		"quantity", "qty", "nominal", "units", "shares", "no. of shares",
		"number", "quantité", "anzahl", "stück", "quantidade", "position",
	},
	RolePrice: {
		"price", "market price", "last price", "quote", "rate", "kurs",
		"cours", "preço", "price per unit", "unit price",
	},
	RoleAcquisitionPrice: {
		"acquisition price", "cost price", "purchase price", "avg cost",
		"average cost", "unit cost", "cost basis", "prix de revient",
		"einstandskurs",
	},
	RoleValue: {
		"value", "market value", "valuation", "amount", "total value",
		"countervalue", "valorisation", "montant", "valor de mercado",
		"marktwert", "ctr. value",
	},
	RoleCurrency: {
		"currency", "ccy", "cur", "cur.", "devise", "moeda", "währung",
	},
	RoleWeight: {
		"weight", "weight %", "weighting", "% of portfolio", "allocation",
		"allocation %", "poids", "gewichtung", "share %",
	},
	RolePerformance: {
		"performance", "perf", "perf %", "p&l", "gain/loss", "return",
		"ytd", "plus-value",
	},
	RoleCoupon: {
		"coupon", "coupon %", "coupon rate", "interest rate", "zins",
	},
	RoleDate: {
		"maturity", "maturity date", "date", "expiry", "expiry date",
		"échéance", "fälligkeit", "vencimento", "trade date",
	},
}
