package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/shibukawa/gopiumlens"
)

// Install offer wording
const (
	OfferMessage = "Required gopium extension tools have not been found."
	OfferAction  = "Try to install tools"
)

// Prompter asks the user to confirm an action
type Prompter interface {
	Confirm(ctx context.Context, message, action string) (bool, error)
}

// Installer installs a single tool
type Installer interface {
	Install(ctx context.Context, tool Tool) error
}

// Discovery resolves tool binaries and offers to install missing ones.
// A nil Prompter declines every offer.
type Discovery struct {
	Provider  Provider
	Locator   Locator
	Prompter  Prompter
	Installer Installer
}

// Lookup returns the absolute binary path of tool without offering anything
func (d *Discovery) Lookup(tool Tool) (string, bool) {
	path := d.Locator.BinPath(tool.BinaryName())
	return path, filepath.IsAbs(path)
}

// Resolve returns the absolute binary path of the named tool. When the
// binary cannot be found the install offer is made and ErrToolNotFound is
// returned, even if the install succeeds. Every unresolved call offers again.
func (d *Discovery) Resolve(ctx context.Context, name string) (string, error) {
	tool, err := d.Provider.Tool(name)
	if err != nil {
		return "", err
	}

	if path, ok := d.Lookup(tool); ok {
		return path, nil
	}

	offerErr := d.Offer(ctx, []Tool{tool})

	return "", errors.Join(fmt.Errorf("%w: %s", gopiumlens.ErrToolNotFound, name), offerErr)
}

// Missing returns the provider's tools whose binaries cannot be found
func (d *Discovery) Missing() []Tool {
	var missing []Tool

	for _, tool := range d.Provider.Tools() {
		if _, ok := d.Lookup(tool); !ok {
			missing = append(missing, tool)
		}
	}

	return missing
}

// Offer prompts once for the given tools and installs all of them when
// accepted. Install failures are joined so every tool gets its attempt.
func (d *Discovery) Offer(ctx context.Context, tools []Tool) error {
	if len(tools) == 0 {
		return nil
	}

	if d.Prompter == nil {
		return gopiumlens.ErrInstallDeclined
	}

	accepted, err := d.Prompter.Confirm(ctx, OfferMessage, OfferAction)
	if err != nil {
		return fmt.Errorf("failed to prompt for installation: %w", err)
	}

	if !accepted {
		return gopiumlens.ErrInstallDeclined
	}

	return d.Install(ctx, tools)
}

// Install installs tools without prompting
func (d *Discovery) Install(ctx context.Context, tools []Tool) error {
	if d.Installer == nil {
		return fmt.Errorf("%w: no installer configured", gopiumlens.ErrInstallFailed)
	}

	var errs []error

	for _, tool := range tools {
		if err := d.Installer.Install(ctx, tool); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
