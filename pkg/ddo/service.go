package ddo

// ServiceType discriminates the entries of a DDO service listing.
type ServiceType string

const (
	ServiceAccess        ServiceType = "Access"
	ServiceMetadata      ServiceType = "Metadata"
	ServiceAuthorization ServiceType = "Authorization"
	ServiceCompute       ServiceType = "Compute"
)

// Service is one entry in the DDO service listing. Fields are populated
// according to the service type.
type Service struct {
	Type  ServiceType `json:"type"`
	Index int         `json:"index"`

	// Access
	TemplateID               string                    `json:"templateId,omitempty"`
	PurchaseEndpoint         string                    `json:"purchaseEndpoint,omitempty"`
	ServiceEndpoint          string                    `json:"serviceEndpoint,omitempty"`
	ServiceAgreementTemplate *ServiceAgreementTemplate `json:"serviceAgreementTemplate,omitempty"`

	// Metadata
	Metadata *MetaData `json:"metadata,omitempty"`

	// Authorization
	Service string `json:"service,omitempty"` // e.g. "SecretStore"
}

// ServiceAgreementTemplate is the static, versioned declaration of the
// conditions composing one exchange pattern, embedded in the asset's service
// listing so both parties agree on the exact ID-derivation recipe without
// further negotiation.
type ServiceAgreementTemplate struct {
	ContractName        string              `json:"contractName"`
	Events              []TemplateEvent     `json:"events,omitempty"`
	FulfillmentOrder    []string            `json:"fulfillmentOrder,omitempty"`
	ConditionDependency map[string][]string `json:"conditionDependency"`
	Conditions          []TemplateCondition `json:"conditions"`
}

// TemplateCondition declares one condition slot: its position, timing
// parameters and the ordered, typed parameters its hash derives from.
type TemplateCondition struct {
	Name         string               `json:"name"`
	ContractName string               `json:"contractName"`
	FunctionName string               `json:"functionName"`
	TimeLock     uint64               `json:"timelock"`
	TimeOut      uint64               `json:"timeout"`
	Parameters   []ConditionParameter `json:"parameters"`
	Events       []TemplateEvent      `json:"events,omitempty"`
}

// ConditionParameter is one ordered, typed parameter slot.
type ConditionParameter struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// TemplateEvent declares an effect a party reacts to.
type TemplateEvent struct {
	Name        string `json:"name"`
	ActorType   string `json:"actorType"` // consumer | publisher
	HandlerName string `json:"handlerName,omitempty"`
}

// TimeValues extracts the per-condition timelock or timeout vector in
// declaration order.
func (t *ServiceAgreementTemplate) TimeValues(kind string) []uint64 {
	values := make([]uint64, len(t.Conditions))
	for i, c := range t.Conditions {
		if kind == "timelock" {
			values[i] = c.TimeLock
		} else {
			values[i] = c.TimeOut
		}
	}
	return values
}
