package domain

import "github.com/pkg/errors"

// WorkflowType identifies which step template a workflow runs
type WorkflowType string

const (
	WorkflowTypeProvisionSubscriber   WorkflowType = "provision_subscriber"
	WorkflowTypeDeprovisionSubscriber WorkflowType = "deprovision_subscriber"
	WorkflowTypeChangeServicePlan     WorkflowType = "change_service_plan"
	WorkflowTypeActivateService       WorkflowType = "activate_service"
	WorkflowTypeSuspendService        WorkflowType = "suspend_service"
	WorkflowTypeTerminateService      WorkflowType = "terminate_service"
	WorkflowTypeMigrateSubscriber     WorkflowType = "migrate_subscriber"
	WorkflowTypeUpdateNetworkConfig   WorkflowType = "update_network_config"
)

// AllWorkflowTypes lists the closed set of workflow types
var AllWorkflowTypes = []WorkflowType{
	WorkflowTypeProvisionSubscriber,
	WorkflowTypeDeprovisionSubscriber,
	WorkflowTypeChangeServicePlan,
	WorkflowTypeActivateService,
	WorkflowTypeSuspendService,
	WorkflowTypeTerminateService,
	WorkflowTypeMigrateSubscriber,
	WorkflowTypeUpdateNetworkConfig,
}

// NewWorkflowType parses a workflow type
func NewWorkflowType(value string) (WorkflowType, error) {
	for _, t := range AllWorkflowTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown workflow type %q", value)
}

func (t WorkflowType) String() string {
	return string(t)
}
