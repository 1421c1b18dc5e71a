package application

import (
	"context"
	"encoding/json"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProvisionSubscriberCommand represents the command to provision a subscriber
type ProvisionSubscriberCommand struct {
	CustomerID      string                 `json:"customer_id" validate:"required,max=128"`
	CustomerName    string                 `json:"customer_name" validate:"required,max=256"`
	Email           string                 `json:"email" validate:"required,email"`
	Phone           string                 `json:"phone,omitempty" validate:"omitempty,max=32"`
	ServiceAddress  string                 `json:"service_address" validate:"required"`
	ServicePlanID   string                 `json:"service_plan_id" validate:"required"`
	BandwidthDown   int                    `json:"bandwidth_down_mbps" validate:"gt=0"`
	BandwidthUp     int                    `json:"bandwidth_up_mbps" validate:"gt=0"`
	ConnectionType  string                 `json:"connection_type" validate:"required,oneof=fiber wireless dsl cable"`
	CPEMacAddress   string                 `json:"cpe_mac_address,omitempty" validate:"omitempty,mac"`
	CPESerial       string                 `json:"cpe_serial,omitempty"`
	ONUSerial       string                 `json:"onu_serial,omitempty"`
	VLANID          int                    `json:"vlan_id,omitempty" validate:"omitempty,min=1,max=4094"`
	IPPoolID        string                 `json:"ip_pool_id,omitempty"`
	RequestedPrefix string                 `json:"requested_prefix,omitempty" validate:"omitempty,cidr"`
	Features        *domain.FeatureToggles `json:"features,omitempty"`
	// RollbackOnFailure defaults to true
	RollbackOnFailure *bool `json:"rollback_on_failure,omitempty"`
}

// ProvisionSubscriber use case: admits a provision_subscriber workflow and
// returns before any step runs
type ProvisionSubscriber struct {
	admission
}

// NewProvisionSubscriber creates a new ProvisionSubscriber use case
func NewProvisionSubscriber(
	repo domain.WorkflowRepository,
	publisher events.Publisher,
	dispatcher WorkflowDispatcher,
	logger zerolog.Logger,
) *ProvisionSubscriber {
	return &ProvisionSubscriber{
		admission: admission{
			repo:       repo,
			publisher:  publisher,
			dispatcher: dispatcher,
			logger:     logger.With().Str("use_case", "provision_subscriber").Logger(),
		},
	}
}

// Execute executes the provision subscriber use case
func (uc *ProvisionSubscriber) Execute(ctx context.Context, cmd *ProvisionSubscriberCommand) (*domain.ProvisioningResult, error) {
	if cmd == nil {
		return nil, errors.Wrap(domain.ErrInvalidInput, "command is required")
	}

	features := domain.AllFeatures()
	if cmd.Features != nil {
		features = *cmd.Features
	}

	if err := uc.validateCommand(cmd, features); err != nil {
		return nil, err
	}

	steps, err := domain.BuildSteps(domain.WorkflowTypeProvisionSubscriber, features)
	if err != nil {
		return nil, err
	}

	request := cmd.toRequest(features)
	input, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode provisioning request")
	}

	rollback := true
	if cmd.RollbackOnFailure != nil {
		rollback = *cmd.RollbackOnFailure
	}

	return uc.admit(ctx, cmd.CustomerID, domain.WorkflowTypeProvisionSubscriber, steps, input, rollback)
}

func (uc *ProvisionSubscriber) validateCommand(cmd *ProvisionSubscriberCommand, features domain.FeatureToggles) error {
	if err := validate.Struct(cmd); err != nil {
		return validationError(err)
	}

	if features.ConfigureOLT && cmd.ONUSerial == "" {
		return errors.Wrap(domain.ErrInvalidInput, "onu_serial is required to configure the OLT")
	}
	if features.ConfigureCPE && cmd.CPEMacAddress == "" {
		return errors.Wrap(domain.ErrInvalidInput, "cpe_mac_address is required to configure the CPE")
	}
	return nil
}

func (cmd *ProvisionSubscriberCommand) toRequest(features domain.FeatureToggles) domain.ProvisioningRequest {
	return domain.ProvisioningRequest{
		CustomerID:      cmd.CustomerID,
		CustomerName:    cmd.CustomerName,
		Email:           cmd.Email,
		Phone:           cmd.Phone,
		ServiceAddress:  cmd.ServiceAddress,
		ServicePlanID:   cmd.ServicePlanID,
		BandwidthDown:   cmd.BandwidthDown,
		BandwidthUp:     cmd.BandwidthUp,
		ConnectionType:  domain.ConnectionType(cmd.ConnectionType),
		CPEMacAddress:   cmd.CPEMacAddress,
		CPESerial:       cmd.CPESerial,
		ONUSerial:       cmd.ONUSerial,
		VLANID:          cmd.VLANID,
		IPPoolID:        cmd.IPPoolID,
		RequestedPrefix: cmd.RequestedPrefix,
		Features:        features,
	}
}
