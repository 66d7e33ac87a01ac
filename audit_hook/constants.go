package audithook

// Action constants for audit events.
const (
	// Equity actions
	ActionCompanyInitialized = "company.initialized"
	ActionTokensMinted       = "token.minted"
	ActionTokensTransferred  = "token.transferred"
	ActionPaymentMade        = "payment.made"
	ActionTokensBurned       = "token.burned"

	// Fundraising actions
	ActionFundraisingInitialized = "fundraising.initialized"
	ActionCampaignCreated        = "campaign.created"
	ActionInvestmentMade         = "campaign.invested"
	ActionFundsWithdrawn         = "campaign.withdrawn"
	ActionCampaignClosed         = "campaign.closed"
)

// Resource constants for audit events.
const (
	ResourceCompany    = "company"
	ResourceToken      = "token"
	ResourcePayment    = "payment"
	ResourceCampaign   = "campaign"
	ResourceInvestment = "investment"
)

// Category constants for audit events.
const (
	CategoryEquity      = "equity"
	CategoryFundraising = "fundraising"
	CategoryPayment     = "payment"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
