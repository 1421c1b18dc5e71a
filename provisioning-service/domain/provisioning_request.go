package domain

import "github.com/draftea/provisioning-system/shared/models"

// ConnectionType is the access technology of a subscriber line
type ConnectionType string

const (
	ConnectionTypeFiber    ConnectionType = "fiber"
	ConnectionTypeWireless ConnectionType = "wireless"
	ConnectionTypeDSL      ConnectionType = "dsl"
	ConnectionTypeCable    ConnectionType = "cable"
)

// ProvisioningRequest is the admission input of a provision_subscriber workflow.
// It is stored as the workflow input and handed to every adapter.
type ProvisioningRequest struct {
	CustomerID      string         `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	ServiceAddress  string         `json:"service_address"`
	ServicePlanID   string         `json:"service_plan_id"`
	BandwidthDown   int            `json:"bandwidth_down_mbps"`
	BandwidthUp     int            `json:"bandwidth_up_mbps"`
	ConnectionType  ConnectionType `json:"connection_type"`
	CPEMacAddress   string         `json:"cpe_mac_address,omitempty"`
	CPESerial       string         `json:"cpe_serial,omitempty"`
	ONUSerial       string         `json:"onu_serial,omitempty"`
	VLANID          int            `json:"vlan_id,omitempty"`
	IPPoolID        string         `json:"ip_pool_id,omitempty"`
	RequestedPrefix string         `json:"requested_prefix,omitempty"`
	Features        FeatureToggles `json:"features"`
}

// ProvisioningResult is the synchronous acknowledgment of an admitted
// workflow: a point-in-time snapshot, not a completion guarantee
type ProvisioningResult struct {
	WorkflowID     models.ID      `json:"workflow_id"`
	CustomerID     string         `json:"customer_id"`
	Status         WorkflowStatus `json:"status"`
	CompletedSteps int            `json:"completed_steps"`
	TotalSteps     int            `json:"total_steps"`
	Message        string         `json:"message"`
}

// NewProvisioningResult snapshots a workflow
func NewProvisioningResult(wf *Workflow, message string) *ProvisioningResult {
	return &ProvisioningResult{
		WorkflowID:     wf.ID,
		CustomerID:     wf.CustomerID,
		Status:         wf.Status,
		CompletedSteps: wf.CompletedSteps(),
		TotalSteps:     wf.TotalSteps(),
		Message:        message,
	}
}
