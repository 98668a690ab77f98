package commands

import (
	"context"
	"fmt"

	"code.meridianbank.io/meridian-go/config"
	mbjson "code.meridianbank.io/meridian-go/libs/json"
	"code.meridianbank.io/meridian-go/logging"

	"github.com/jessevdk/go-flags"
)

type RegisterDeviceCmd struct {
	ctx context.Context

	config.HomeFlag
	config.PassphraseFlag
	config.OutputFlag

	APIKey       string   `long:"api-key" required:"true" description:"The API key to bind this device to"`
	Description  string   `long:"description" default:"meridian-go" description:"A description of this device, shown in the platform overview"`
	PermittedIPs []string `long:"permitted-ip" description:"An IP the API key may be used from, repeat for more than one, empty permits the caller IP only"`
}

var registerDeviceCmd RegisterDeviceCmd

func (opts *RegisterDeviceCmd) Execute(_ []string) error {
	output, err := opts.OutputFlag.GetOutput()
	if err != nil {
		return err
	}

	resources, err := buildClientResources(opts.HomeFlag, opts.PassphraseFlag)
	if err != nil {
		return err
	}
	log := resources.log
	defer log.AtExit()

	if err := resources.handshake.RegisterDevice(opts.ctx, opts.APIKey, opts.Description, opts.PermittedIPs); err != nil {
		return fmt.Errorf("couldn't register the device: %w", err)
	}

	snapshot, err := resources.store.Load()
	if err != nil {
		return err
	}

	result := struct {
		DeviceID     string   `json:"deviceId"`
		Description  string   `json:"description"`
		PermittedIPs []string `json:"permittedIps,omitempty"`
	}{
		DeviceID:     snapshot.Device.ID,
		Description:  snapshot.Device.Description,
		PermittedIPs: snapshot.Device.PermittedIPs,
	}

	if output.IsHuman() {
		log.Info("device registered successfully",
			logging.String("device-id", result.DeviceID),
		)
		if err := mbjson.PrettyPrint(result); err != nil {
			return fmt.Errorf("couldn't pretty print result: %w", err)
		}
	} else if output.IsJSON() {
		return mbjson.Print(result)
	}

	return nil
}

func RegisterDevice(ctx context.Context, parser *flags.Parser) error {
	registerDeviceCmd = RegisterDeviceCmd{ctx: ctx}

	short := "Register this device with the platform"
	long := "Bind the API key to the installed device identity, a prerequisite for opening sessions"

	_, err := parser.AddCommand("register-device", short, long, &registerDeviceCmd)
	return err
}
