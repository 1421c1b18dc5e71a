package domain

import "github.com/pkg/errors"

// Target systems reached through step adapters
const (
	SystemRadius       = "radius"
	SystemIPAM         = "ipam"
	SystemCPE          = "cpe"
	SystemOLT          = "olt"
	SystemBilling      = "billing"
	SystemNotification = "notification"
)

// FeatureToggles selects which optional steps a provisioning workflow runs
type FeatureToggles struct {
	AllocateIPFromIPAM  bool `json:"allocate_ip_from_ipam"`
	CreateRadiusAccount bool `json:"create_radius_account"`
	ConfigureCPE        bool `json:"configure_cpe"`
	ConfigureOLT        bool `json:"configure_olt"`
	AutoActivate        bool `json:"auto_activate"`
	SendWelcomeEmail    bool `json:"send_welcome_email"`
}

// AllFeatures enables every optional step
func AllFeatures() FeatureToggles {
	return FeatureToggles{
		AllocateIPFromIPAM:  true,
		CreateRadiusAccount: true,
		ConfigureCPE:        true,
		ConfigureOLT:        true,
		AutoActivate:        true,
		SendWelcomeEmail:    true,
	}
}

// StepDefinition is one entry of a workflow type's step template
type StepDefinition struct {
	Name         string
	TargetSystem string
	Action       string
	enabled      func(FeatureToggles) bool
}

// ActionKey is the adapter registry key for the step
func (d StepDefinition) ActionKey() string {
	return d.TargetSystem + "." + d.Action
}

func step(name, system, action string, enabled func(FeatureToggles) bool) StepDefinition {
	return StepDefinition{Name: name, TargetSystem: system, Action: action, enabled: enabled}
}

func always(FeatureToggles) bool { return true }

var stepTemplates = map[WorkflowType][]StepDefinition{
	WorkflowTypeProvisionSubscriber: {
		step("allocate_ip_address", SystemIPAM, "allocate_address", func(f FeatureToggles) bool { return f.AllocateIPFromIPAM }),
		step("create_radius_account", SystemRadius, "create_account", func(f FeatureToggles) bool { return f.CreateRadiusAccount }),
		step("configure_cpe", SystemCPE, "push_config", func(f FeatureToggles) bool { return f.ConfigureCPE }),
		step("provision_onu", SystemOLT, "register_onu", func(f FeatureToggles) bool { return f.ConfigureOLT }),
		step("activate_service", SystemBilling, "activate_service", func(f FeatureToggles) bool { return f.AutoActivate }),
		step("send_welcome_notification", SystemNotification, "send_welcome", func(f FeatureToggles) bool { return f.SendWelcomeEmail }),
	},
	WorkflowTypeDeprovisionSubscriber: {
		step("deactivate_service", SystemBilling, "deactivate_service", always),
		step("deprovision_onu", SystemOLT, "deregister_onu", always),
		step("reset_cpe", SystemCPE, "factory_reset", always),
		step("delete_radius_account", SystemRadius, "delete_account", always),
		step("release_ip_address", SystemIPAM, "release_address", always),
	},
	WorkflowTypeChangeServicePlan: {
		step("update_radius_profile", SystemRadius, "update_profile", always),
		step("update_cpe_bandwidth", SystemCPE, "update_bandwidth", always),
		step("update_onu_bandwidth", SystemOLT, "update_bandwidth", always),
		step("update_service_plan", SystemBilling, "change_plan", always),
	},
	WorkflowTypeActivateService: {
		step("enable_radius_account", SystemRadius, "enable_account", always),
		step("activate_service", SystemBilling, "activate_service", always),
	},
	WorkflowTypeSuspendService: {
		step("disable_radius_account", SystemRadius, "disable_account", always),
		step("suspend_service", SystemBilling, "suspend_service", always),
	},
	WorkflowTypeTerminateService: {
		step("terminate_service", SystemBilling, "terminate_service", always),
		step("delete_radius_account", SystemRadius, "delete_account", always),
		step("release_ip_address", SystemIPAM, "release_address", always),
	},
	WorkflowTypeMigrateSubscriber: {
		step("allocate_ip_address", SystemIPAM, "allocate_address", always),
		step("update_radius_profile", SystemRadius, "update_profile", always),
		step("configure_cpe", SystemCPE, "push_config", always),
		step("provision_onu", SystemOLT, "register_onu", always),
	},
	WorkflowTypeUpdateNetworkConfig: {
		step("update_cpe_config", SystemCPE, "push_config", always),
		step("update_onu_config", SystemOLT, "update_config", always),
	},
}

// StepTemplate returns the full step template for a workflow type
func StepTemplate(workflowType WorkflowType) ([]StepDefinition, error) {
	template, ok := stepTemplates[workflowType]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "no step template for workflow type %q", workflowType)
	}
	out := make([]StepDefinition, len(template))
	copy(out, template)
	return out, nil
}

// BuildSteps materializes the steps of a new workflow from its type template,
// dropping the steps whose feature toggle is off. Order indices start at 1.
func BuildSteps(workflowType WorkflowType, features FeatureToggles) ([]*WorkflowStep, error) {
	template, err := StepTemplate(workflowType)
	if err != nil {
		return nil, err
	}

	steps := make([]*WorkflowStep, 0, len(template))
	for _, def := range template {
		if !def.enabled(features) {
			continue
		}
		steps = append(steps, NewWorkflowStep(def, len(steps)+1))
	}

	if len(steps) == 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "workflow type %q has no enabled steps", workflowType)
	}
	return steps, nil
}
