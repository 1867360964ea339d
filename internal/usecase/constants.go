package usecase

// Account codes used by automated posting. They match the default chart
// of accounts seeded per tenant by SeedDefaultChart.
const (
	AccountCash        = "1100"
	AccountReceivable  = "1200"
	AccountPrepayments = "1300"
	AccountVATInput    = "1400"
	AccountPayable     = "2100"
	AccountVATOutput   = "2150"
	AccountAccruals    = "2300"
	AccountRevenue     = "4000"
	AccountExpense     = "5000"
)

// Account code prefixes used by reporting and consolidation.
const (
	PrefixAsset     = "1"
	PrefixLiability = "2"
	PrefixEquity    = "3"
	PrefixRevenue   = "4"
	PrefixExpense   = "5"
	PrefixExpense2  = "6"
	PrefixCash      = "11"
)
