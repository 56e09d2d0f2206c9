// internal/common/lex/client.go
package lex

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2/types"

	"lex-build-workers/internal/models"
)

// API is the subset of *lexmodelsv2.Client the adapter calls.
type API interface {
	CreateSlotType(ctx context.Context, in *lexmodelsv2.CreateSlotTypeInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.CreateSlotTypeOutput, error)
	UpdateSlotType(ctx context.Context, in *lexmodelsv2.UpdateSlotTypeInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.UpdateSlotTypeOutput, error)
	DescribeSlotType(ctx context.Context, in *lexmodelsv2.DescribeSlotTypeInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeSlotTypeOutput, error)
	ListSlotTypes(ctx context.Context, in *lexmodelsv2.ListSlotTypesInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.ListSlotTypesOutput, error)
	DeleteSlotType(ctx context.Context, in *lexmodelsv2.DeleteSlotTypeInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DeleteSlotTypeOutput, error)

	CreateIntent(ctx context.Context, in *lexmodelsv2.CreateIntentInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.CreateIntentOutput, error)
	UpdateIntent(ctx context.Context, in *lexmodelsv2.UpdateIntentInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.UpdateIntentOutput, error)
	DescribeIntent(ctx context.Context, in *lexmodelsv2.DescribeIntentInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeIntentOutput, error)
	ListIntents(ctx context.Context, in *lexmodelsv2.ListIntentsInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.ListIntentsOutput, error)
	DeleteIntent(ctx context.Context, in *lexmodelsv2.DeleteIntentInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DeleteIntentOutput, error)

	CreateSlot(ctx context.Context, in *lexmodelsv2.CreateSlotInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.CreateSlotOutput, error)
	UpdateSlot(ctx context.Context, in *lexmodelsv2.UpdateSlotInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.UpdateSlotOutput, error)
	DescribeSlot(ctx context.Context, in *lexmodelsv2.DescribeSlotInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeSlotOutput, error)
	ListSlots(ctx context.Context, in *lexmodelsv2.ListSlotsInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.ListSlotsOutput, error)

	BuildBotLocale(ctx context.Context, in *lexmodelsv2.BuildBotLocaleInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.BuildBotLocaleOutput, error)
	DescribeBotLocale(ctx context.Context, in *lexmodelsv2.DescribeBotLocaleInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeBotLocaleOutput, error)
	CreateExport(ctx context.Context, in *lexmodelsv2.CreateExportInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.CreateExportOutput, error)
	DescribeExport(ctx context.Context, in *lexmodelsv2.DescribeExportInput, opts ...func(*lexmodelsv2.Options)) (*lexmodelsv2.DescribeExportOutput, error)
}

var _ API = (*lexmodelsv2.Client)(nil)
var _ Platform = (*Client)(nil)

const listPageSize = 100

// Client implements Platform on top of the Lex V2 models API.
type Client struct {
	api API
}

// NewClient wraps an API implementation.
func NewClient(api API) *Client {
	return &Client{api: api}
}

// NewFromConfig builds a Client from a loaded AWS config.
func NewFromConfig(cfg aws.Config) *Client {
	return NewClient(lexmodelsv2.NewFromConfig(cfg))
}

// --- slot types ---

func (c *Client) CreateSlotType(ctx context.Context, loc Locale, def models.SlotTypeDefinition) (string, error) {
	out, err := c.api.CreateSlotType(ctx, &lexmodelsv2.CreateSlotTypeInput{
		BotId:                   aws.String(loc.BotID),
		BotVersion:              aws.String(loc.BotVersion),
		LocaleId:                aws.String(loc.LocaleID),
		SlotTypeName:            aws.String(def.Name),
		Description:             optional(def.Description),
		ParentSlotTypeSignature: optional(def.ParentSignature),
		SlotTypeValues:          toSlotTypeValues(def.Values),
		ValueSelectionSetting:   toSelectionSetting(def),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.SlotTypeId), nil
}

func (c *Client) UpdateSlotType(ctx context.Context, loc Locale, id string, def models.SlotTypeDefinition) error {
	_, err := c.api.UpdateSlotType(ctx, &lexmodelsv2.UpdateSlotTypeInput{
		BotId:                   aws.String(loc.BotID),
		BotVersion:              aws.String(loc.BotVersion),
		LocaleId:                aws.String(loc.LocaleID),
		SlotTypeId:              aws.String(id),
		SlotTypeName:            aws.String(def.Name),
		Description:             optional(def.Description),
		ParentSlotTypeSignature: optional(def.ParentSignature),
		SlotTypeValues:          toSlotTypeValues(def.Values),
		ValueSelectionSetting:   toSelectionSetting(def),
	})
	return err
}

func (c *Client) DescribeSlotType(ctx context.Context, loc Locale, id string) (models.SlotTypeDefinition, error) {
	out, err := c.api.DescribeSlotType(ctx, &lexmodelsv2.DescribeSlotTypeInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		SlotTypeId: aws.String(id),
	})
	if err != nil {
		return models.SlotTypeDefinition{}, err
	}
	def := models.SlotTypeDefinition{
		Name:            aws.ToString(out.SlotTypeName),
		Description:     aws.ToString(out.Description),
		ParentSignature: aws.ToString(out.ParentSlotTypeSignature),
	}
	if out.ValueSelectionSetting != nil {
		def.ResolutionStrategy = string(out.ValueSelectionSetting.ResolutionStrategy)
	}
	for _, v := range out.SlotTypeValues {
		val := models.SlotTypeValue{}
		if v.SampleValue != nil {
			val.Value = aws.ToString(v.SampleValue.Value)
		}
		for _, syn := range v.Synonyms {
			val.Synonyms = append(val.Synonyms, aws.ToString(syn.Value))
		}
		def.Values = append(def.Values, val)
	}
	return def, nil
}

func (c *Client) ListSlotTypes(ctx context.Context, loc Locale) ([]models.ResourceRef, error) {
	pager := lexmodelsv2.NewListSlotTypesPaginator(c.api, &lexmodelsv2.ListSlotTypesInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		MaxResults: aws.Int32(listPageSize),
	})
	refs := []models.ResourceRef{}
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.SlotTypeSummaries {
			refs = append(refs, models.ResourceRef{ID: aws.ToString(s.SlotTypeId), Name: aws.ToString(s.SlotTypeName)})
		}
	}
	return refs, nil
}

func (c *Client) DeleteSlotType(ctx context.Context, loc Locale, id string) error {
	_, err := c.api.DeleteSlotType(ctx, &lexmodelsv2.DeleteSlotTypeInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		SlotTypeId: aws.String(id),
	})
	return err
}

// --- intents ---

func (c *Client) CreateIntent(ctx context.Context, loc Locale, def models.IntentDefinition) (string, error) {
	out, err := c.api.CreateIntent(ctx, &lexmodelsv2.CreateIntentInput{
		BotId:                 aws.String(loc.BotID),
		BotVersion:            aws.String(loc.BotVersion),
		LocaleId:              aws.String(loc.LocaleID),
		IntentName:            aws.String(def.Name),
		Description:           optional(def.Description),
		ParentIntentSignature: optional(def.ParentSignature),
		SampleUtterances:      toUtterances(def.SampleUtterances),
		DialogCodeHook:        &types.DialogCodeHookSettings{Enabled: def.DialogCodeHook},
		FulfillmentCodeHook:   &types.FulfillmentCodeHookSettings{Enabled: def.FulfillmentCodeHook},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.IntentId), nil
}

func (c *Client) UpdateIntent(ctx context.Context, loc Locale, id string, def models.IntentDefinition) error {
	_, err := c.api.UpdateIntent(ctx, &lexmodelsv2.UpdateIntentInput{
		BotId:                 aws.String(loc.BotID),
		BotVersion:            aws.String(loc.BotVersion),
		LocaleId:              aws.String(loc.LocaleID),
		IntentId:              aws.String(id),
		IntentName:            aws.String(def.Name),
		Description:           optional(def.Description),
		ParentIntentSignature: optional(def.ParentSignature),
		SampleUtterances:      toUtterances(def.SampleUtterances),
		SlotPriorities:        toSlotPriorities(def.SlotPriorities),
		DialogCodeHook:        &types.DialogCodeHookSettings{Enabled: def.DialogCodeHook},
		FulfillmentCodeHook:   &types.FulfillmentCodeHookSettings{Enabled: def.FulfillmentCodeHook},
	})
	return err
}

func (c *Client) DescribeIntent(ctx context.Context, loc Locale, id string) (models.IntentDefinition, error) {
	out, err := c.api.DescribeIntent(ctx, &lexmodelsv2.DescribeIntentInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		IntentId:   aws.String(id),
	})
	if err != nil {
		return models.IntentDefinition{}, err
	}
	def := models.IntentDefinition{
		Name:             aws.ToString(out.IntentName),
		Description:      aws.ToString(out.Description),
		ParentSignature:  aws.ToString(out.ParentIntentSignature),
		SampleUtterances: []string{},
	}
	for _, u := range out.SampleUtterances {
		def.SampleUtterances = append(def.SampleUtterances, aws.ToString(u.Utterance))
	}
	for _, p := range out.SlotPriorities {
		def.SlotPriorities = append(def.SlotPriorities, models.SlotPriority{
			Priority: int(aws.ToInt32(p.Priority)),
			SlotID:   aws.ToString(p.SlotId),
		})
	}
	if out.DialogCodeHook != nil {
		def.DialogCodeHook = out.DialogCodeHook.Enabled
	}
	if out.FulfillmentCodeHook != nil {
		def.FulfillmentCodeHook = out.FulfillmentCodeHook.Enabled
	}
	return def, nil
}

func (c *Client) ListIntents(ctx context.Context, loc Locale) ([]models.ResourceRef, error) {
	pager := lexmodelsv2.NewListIntentsPaginator(c.api, &lexmodelsv2.ListIntentsInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		MaxResults: aws.Int32(listPageSize),
	})
	refs := []models.ResourceRef{}
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.IntentSummaries {
			refs = append(refs, models.ResourceRef{ID: aws.ToString(s.IntentId), Name: aws.ToString(s.IntentName)})
		}
	}
	return refs, nil
}

func (c *Client) DeleteIntent(ctx context.Context, loc Locale, id string) error {
	_, err := c.api.DeleteIntent(ctx, &lexmodelsv2.DeleteIntentInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		IntentId:   aws.String(id),
	})
	return err
}

// --- slots ---

func (c *Client) CreateSlot(ctx context.Context, loc Locale, intentID string, def models.SlotDefinition) (string, error) {
	out, err := c.api.CreateSlot(ctx, &lexmodelsv2.CreateSlotInput{
		BotId:                   aws.String(loc.BotID),
		BotVersion:              aws.String(loc.BotVersion),
		LocaleId:                aws.String(loc.LocaleID),
		IntentId:                aws.String(intentID),
		SlotName:                aws.String(def.Name),
		SlotTypeId:              aws.String(def.SlotTypeID),
		Description:             optional(def.Description),
		ValueElicitationSetting: toElicitation(def),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.SlotId), nil
}

func (c *Client) UpdateSlot(ctx context.Context, loc Locale, intentID, slotID string, def models.SlotDefinition) error {
	_, err := c.api.UpdateSlot(ctx, &lexmodelsv2.UpdateSlotInput{
		BotId:                   aws.String(loc.BotID),
		BotVersion:              aws.String(loc.BotVersion),
		LocaleId:                aws.String(loc.LocaleID),
		IntentId:                aws.String(intentID),
		SlotId:                  aws.String(slotID),
		SlotName:                aws.String(def.Name),
		SlotTypeId:              aws.String(def.SlotTypeID),
		Description:             optional(def.Description),
		ValueElicitationSetting: toElicitation(def),
	})
	return err
}

func (c *Client) DescribeSlot(ctx context.Context, loc Locale, intentID, slotID string) (models.SlotDefinition, error) {
	out, err := c.api.DescribeSlot(ctx, &lexmodelsv2.DescribeSlotInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		IntentId:   aws.String(intentID),
		SlotId:     aws.String(slotID),
	})
	if err != nil {
		return models.SlotDefinition{}, err
	}
	def := models.SlotDefinition{
		Name:        aws.ToString(out.SlotName),
		Description: aws.ToString(out.Description),
		SlotTypeID:  aws.ToString(out.SlotTypeId),
	}
	if es := out.ValueElicitationSetting; es != nil {
		def.Required = es.SlotConstraint == types.SlotConstraintRequired
		if ps := es.PromptSpecification; ps != nil {
			def.MaxRetries = int(aws.ToInt32(ps.MaxRetries))
			if len(ps.MessageGroups) > 0 && ps.MessageGroups[0].Message != nil && ps.MessageGroups[0].Message.PlainTextMessage != nil {
				def.Prompt = aws.ToString(ps.MessageGroups[0].Message.PlainTextMessage.Value)
			}
		}
	}
	return def, nil
}

func (c *Client) ListSlots(ctx context.Context, loc Locale, intentID string) ([]models.ResourceRef, error) {
	pager := lexmodelsv2.NewListSlotsPaginator(c.api, &lexmodelsv2.ListSlotsInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
		IntentId:   aws.String(intentID),
		MaxResults: aws.Int32(listPageSize),
	})
	refs := []models.ResourceRef{}
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.SlotSummaries {
			refs = append(refs, models.ResourceRef{ID: aws.ToString(s.SlotId), Name: aws.ToString(s.SlotName)})
		}
	}
	return refs, nil
}

// --- build & export ---

func (c *Client) BuildLocale(ctx context.Context, loc Locale) error {
	_, err := c.api.BuildBotLocale(ctx, &lexmodelsv2.BuildBotLocaleInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
	})
	return err
}

func (c *Client) DescribeLocale(ctx context.Context, loc Locale) (LocaleState, error) {
	out, err := c.api.DescribeBotLocale(ctx, &lexmodelsv2.DescribeBotLocaleInput{
		BotId:      aws.String(loc.BotID),
		BotVersion: aws.String(loc.BotVersion),
		LocaleId:   aws.String(loc.LocaleID),
	})
	if err != nil {
		return LocaleState{}, err
	}
	return LocaleState{Status: string(out.BotLocaleStatus), FailureReasons: out.FailureReasons}, nil
}

func (c *Client) CreateExport(ctx context.Context, loc Locale) (string, error) {
	out, err := c.api.CreateExport(ctx, &lexmodelsv2.CreateExportInput{
		FileFormat: types.ImportExportFileFormatLexJson,
		ResourceSpecification: &types.ExportResourceSpecification{
			BotExportSpecification: &types.BotExportSpecification{
				BotId:      aws.String(loc.BotID),
				BotVersion: aws.String(loc.BotVersion),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.ExportId), nil
}

func (c *Client) DescribeExport(ctx context.Context, exportID string) (ExportState, error) {
	out, err := c.api.DescribeExport(ctx, &lexmodelsv2.DescribeExportInput{ExportId: aws.String(exportID)})
	if err != nil {
		return ExportState{}, err
	}
	return ExportState{
		Status:         string(out.ExportStatus),
		DownloadURL:    aws.ToString(out.DownloadUrl),
		FailureReasons: out.FailureReasons,
	}, nil
}

// --- mapping helpers ---

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func toSlotTypeValues(values []models.SlotTypeValue) []types.SlotTypeValue {
	if len(values) == 0 {
		return nil
	}
	out := make([]types.SlotTypeValue, 0, len(values))
	for _, v := range values {
		stv := types.SlotTypeValue{SampleValue: &types.SampleValue{Value: aws.String(v.Value)}}
		for _, syn := range v.Synonyms {
			stv.Synonyms = append(stv.Synonyms, types.SampleValue{Value: aws.String(syn)})
		}
		out = append(out, stv)
	}
	return out
}

func toSelectionSetting(def models.SlotTypeDefinition) *types.SlotValueSelectionSetting {
	if def.ParentSignature != "" {
		return nil
	}
	strategy := types.SlotValueResolutionStrategyOriginalValue
	if def.ResolutionStrategy != "" {
		strategy = types.SlotValueResolutionStrategy(def.ResolutionStrategy)
	}
	return &types.SlotValueSelectionSetting{ResolutionStrategy: strategy}
}

func toUtterances(utterances []string) []types.SampleUtterance {
	if len(utterances) == 0 {
		return nil
	}
	out := make([]types.SampleUtterance, 0, len(utterances))
	for _, u := range utterances {
		out = append(out, types.SampleUtterance{Utterance: aws.String(u)})
	}
	return out
}

func toSlotPriorities(priorities []models.SlotPriority) []types.SlotPriority {
	if len(priorities) == 0 {
		return nil
	}
	out := make([]types.SlotPriority, 0, len(priorities))
	for _, p := range priorities {
		out = append(out, types.SlotPriority{Priority: aws.Int32(int32(p.Priority)), SlotId: aws.String(p.SlotID)})
	}
	return out
}

func toElicitation(def models.SlotDefinition) *types.SlotValueElicitationSetting {
	constraint := types.SlotConstraintOptional
	if def.Required {
		constraint = types.SlotConstraintRequired
	}
	setting := &types.SlotValueElicitationSetting{SlotConstraint: constraint}
	if def.Prompt != "" {
		maxRetries := def.MaxRetries
		if maxRetries == 0 {
			maxRetries = 2
		}
		setting.PromptSpecification = &types.PromptSpecification{
			MaxRetries: aws.Int32(int32(maxRetries)),
			MessageGroups: []types.MessageGroup{{
				Message: &types.Message{PlainTextMessage: &types.PlainTextMessage{Value: aws.String(def.Prompt)}},
			}},
		}
	}
	return setting
}
