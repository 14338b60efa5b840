package services

// ServiceContainer aggregates the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Ledger      LedgerSvcFacade
	Marketplace MarketplaceSvcFacade
	Ticket      TicketSvcFacade
}
