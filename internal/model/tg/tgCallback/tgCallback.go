package tgCallback

const (
	Holding          = "holding"
	RefreshPortfolio = "refresh_portfolio"
)
