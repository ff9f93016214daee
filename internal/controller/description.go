package controller

import (
	"context"
	"strings"

	"listingai/internal/domain"
	"listingai/internal/infra"
	"listingai/internal/providers/genai"
	"listingai/internal/providers/prompt"
)

// DescriptionInput is the description form.
type DescriptionInput struct {
	ProductName string        `json:"product_name"`
	Details     string        `json:"prompt"`
	Tone        string        `json:"tone"`
	Locale      prompt.Locale `json:"-"`
}

// DescriptionController writes listing copy from seller-provided details.
type DescriptionController struct {
	*machine
	clients ClientSource
	draft   *domain.ListingDraft
	model   genai.Model
	logger  *infra.Logger
}

func NewDescriptionController(deps Deps) *DescriptionController {
	deps = deps.withDefaults()
	return &DescriptionController{
		machine: newMachine(FeatureDescription),
		clients: deps.Clients,
		draft:   deps.Draft,
		model:   deps.Models.Description,
		logger:  deps.Logger,
	}
}

func (c *DescriptionController) Generate(ctx context.Context, in DescriptionInput) (View, error) {
	if strings.TrimSpace(in.Details) == "" {
		return c.fail(invalidInput("describe the product before generating"))
	}
	client, err := ready(c.clients)
	if err != nil {
		return c.fail(err)
	}

	text := prompt.New(in.Locale).Description(in.ProductName, in.Details, in.Tone)
	return c.run(ctx, func(ctx context.Context) (*outcome, error) {
		out, err := client.WithModel(c.model).GenerateText(ctx, text, genai.DescriptionConfig)
		logOutcome(ctx, c.logger, FeatureDescription, c.model, err)
		if err != nil {
			return nil, err
		}
		return &outcome{text: strings.TrimSpace(out), acceptable: true}, nil
	})
}

// View returns the current state.
func (c *DescriptionController) View() View {
	return c.view()
}

// Accept writes the last generated description into the listing draft.
func (c *DescriptionController) Accept(context.Context) (domain.Listing, error) {
	o, err := c.accepted()
	if err != nil {
		return domain.Listing{}, err
	}
	return c.draft.SetDescription(o.text), nil
}
