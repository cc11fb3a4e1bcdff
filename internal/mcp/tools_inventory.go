// tools_inventory.go provides the Inventory tools: samples, subsamples,
// containers, workbenches, templates, moves and search. The whole group is
// dropped from the catalog when tools.inventory is false.

package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpl-au/rspace-mcp/internal/rspace"
	"github.com/jpl-au/rspace-mcp/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	quantityUnits = []string{"items", "ul", "µl", "ml", "l", "ug", "µg", "mg", "g"}
	sampleOrders  = []string{"name", "created", "lastModified"}
	sortOrders    = []string{"asc", "desc"}
)

func (h *handlers) inventoryTools() []Tool {
	inventory := func(t Tool) Tool {
		t.Group = GroupInventory
		return t
	}
	return []Tool{
		inventory(Tool{
			Def: annotate(mcp.NewTool("create_sample",
				mcp.WithDescription("Create an inventory sample with one or more subsamples. "+
					"total_quantity_value is split evenly across the subsamples by RSpace."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Sample name")),
				mcp.WithString("description", mcp.Description("Free-text description")),
				withTags("tags", "Sample tags"),
				mcp.WithNumber("subsample_count", integer(), mcp.Min(1), mcp.Max(100), mcp.DefaultNumber(1),
					mcp.Description("Number of subsamples to create (default 1)")),
				mcp.WithNumber("total_quantity_value", mcp.Min(0), mcp.Description("Total amount of the sample")),
				mcp.WithString("total_quantity_unit", mcp.Enum(quantityUnits...), mcp.DefaultString("ml"),
					mcp.Description("Unit of total_quantity_value (default ml)")),
			), "Create sample", false, false),
			Action:  "write",
			Target:  "name",
			Handler: bind(h.createSample),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_sample",
				mcp.WithDescription("Get a sample with its subsamples and their notes."),
				withID("sample_id", "Sample id, numeric or global (SA1234)", true),
			), "Get sample", true, false),
			ReadOnly: true,
			Action:   "read",
			Target:   "sample_id",
			Handler:  bind(h.getSample),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("list_samples",
				mcp.WithDescription("List samples visible to the user."),
				withPageSize(defaultPageSize),
				withPageNumber(),
				mcp.WithString("order_by", mcp.Enum(sampleOrders...), mcp.DefaultString("lastModified"),
					mcp.Description("Sort field (default lastModified)")),
				mcp.WithString("sort_order", mcp.Enum(sortOrders...), mcp.DefaultString("desc"),
					mcp.Description("Sort direction (default desc)")),
			), "List samples", true, false),
			ReadOnly: true,
			Action:   "list",
			Handler:  bind(h.listSamples),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("duplicate_sample",
				mcp.WithDescription("Copy a sample together with its subsamples."),
				withID("sample_id", "Sample id, numeric or global (SA1234)", true),
				mcp.WithString("new_name", mcp.Description("Name of the copy; RSpace appends _COPY when omitted")),
			), "Duplicate sample", false, false),
			Action:  "write",
			Target:  "sample_id",
			Handler: bind(h.duplicateSample),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("add_note_to_subsample",
				mcp.WithDescription("Append a note to a subsample."),
				withID("subsample_id", "Subsample id, numeric or global (SS1234)", true),
				mcp.WithString("note", mcp.Required(), mcp.Description("Note text")),
			), "Add subsample note", false, false),
			Action:  "write",
			Target:  "subsample_id",
			Handler: bind(h.addSubSampleNote),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("split_subsample",
				mcp.WithDescription("Split a subsample into new subsamples of the same sample, for aliquots. "+
					"With quantity_per_subsample each new subsample receives that amount."),
				withID("subsample_id", "Subsample id, numeric or global (SS1234)", true),
				mcp.WithNumber("num_new_subsamples", mcp.Required(), integer(), mcp.Min(1), mcp.Max(100),
					mcp.Description("Number of subsamples to create")),
				mcp.WithNumber("quantity_per_subsample", mcp.Min(0), mcp.Description("Amount given to each new subsample")),
				mcp.WithString("quantity_unit", mcp.Enum(quantityUnits...), mcp.DefaultString("ml"),
					mcp.Description("Unit of quantity_per_subsample (default ml)")),
			), "Split subsample", false, false),
			Action:  "write",
			Target:  "subsample_id",
			Handler: bind(h.splitSubSample),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("search_inventory",
				mcp.WithDescription("Search samples, subsamples, containers and templates by text."),
				mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
				mcp.WithString("result_type", mcp.Enum(rspace.ResultTypes...),
					mcp.Description("Restrict hits to one record type")),
				withPageSize(defaultPageSize),
				withPageNumber(),
			), "Search inventory", true, false),
			ReadOnly: true,
			Action:   "search",
			Target:   "query",
			Handler:  bind(h.searchInventory),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("create_list_container",
				mcp.WithDescription("Create a list container. Without parent_container_id it is placed on the user's workbench."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Container name")),
				mcp.WithString("description", mcp.Description("Free-text description")),
				withTags("tags", "Container tags"),
				mcp.WithBoolean("can_store_containers", mcp.DefaultBool(true),
					mcp.Description("Whether containers may be placed inside (default true)")),
				mcp.WithBoolean("can_store_samples", mcp.DefaultBool(true),
					mcp.Description("Whether samples may be placed inside (default true)")),
				withID("parent_container_id", "Container to create this one in (IC1234)", false),
			), "Create list container", false, false),
			Action:  "write",
			Target:  "name",
			Handler: bind(h.createListContainer),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("create_grid_container",
				mcp.WithDescription("Create a grid container such as a 96-well plate (8 rows, 12 columns) or a freezer box. "+
					"Without parent_container_id it is placed on the user's workbench."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Container name")),
				mcp.WithNumber("rows", mcp.Required(), integer(), mcp.Min(1), mcp.Description("Number of rows")),
				mcp.WithNumber("columns", mcp.Required(), integer(), mcp.Min(1), mcp.Description("Number of columns")),
				mcp.WithString("description", mcp.Description("Free-text description")),
				withTags("tags", "Container tags"),
				mcp.WithBoolean("can_store_containers", mcp.DefaultBool(true),
					mcp.Description("Whether containers may be placed inside (default true)")),
				mcp.WithBoolean("can_store_samples", mcp.DefaultBool(true),
					mcp.Description("Whether samples may be placed inside (default true)")),
				withID("parent_container_id", "Container to create this one in (IC1234)", false),
			), "Create grid container", false, false),
			Action:  "write",
			Target:  "name",
			Handler: bind(h.createGridContainer),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("move_items_to_list_container",
				mcp.WithDescription("Move samples, subsamples or containers into a list container in one request. "+
					"Items are global ids (SA, SS or IC). The result reports each item; success is false when any failed."),
				withID("target_container_id", "List container to move the items into (IC1234)", true),
				mcp.WithArray("item_ids", mcp.Required(), mcp.MinItems(1), mcp.WithStringItems(),
					mcp.Description("Global ids of the items to move")),
			), "Move items to list container", false, false),
			Action:  "move",
			Target:  "target_container_id",
			Handler: bind(h.moveToListContainer),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_container",
				mcp.WithDescription("Get a container, optionally with the records stored in it."),
				withID("container_id", "Container id, numeric or global (IC1234)", true),
				mcp.WithBoolean("include_content", mcp.Description("Include stored records (default false)")),
			), "Get container", true, false),
			ReadOnly: true,
			Action:   "read",
			Target:   "container_id",
			Handler:  bind(h.getContainer),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_container_summary",
				mcp.WithDescription("Get a container's metadata without its contents. Use on large containers."),
				withID("container_id", "Container id, numeric or global (IC1234)", true),
			), "Get container summary", true, false),
			ReadOnly: true,
			Action:   "read",
			Target:   "container_id",
			Handler:  bind(h.getContainerSummary),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_container_contents_only",
				mcp.WithDescription("List the locations of a container and the record stored in each, without the container's metadata."),
				withID("container_id", "Container id, numeric or global (IC1234)", true),
			), "Get container contents", true, false),
			ReadOnly: true,
			Action:   "read",
			Target:   "container_id",
			Handler:  bind(h.getContainerContents),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("list_containers",
				mcp.WithDescription("List the user's top-level containers."),
				withPageSize(defaultPageSize),
				withPageNumber(),
			), "List containers", true, false),
			ReadOnly: true,
			Action:   "list",
			Handler:  bind(h.listContainers),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_workbenches",
				mcp.WithDescription("List the workbenches visible to the user."),
			), "Get workbenches", true, false),
			ReadOnly: true,
			Action:   "list",
			Handler: func(ctx context.Context, _ map[string]any) (any, error) {
				benches, err := h.client.Workbenches(ctx)
				if err != nil {
					return nil, err
				}
				if benches == nil {
					benches = []rspace.Container{}
				}
				return benches, nil
			},
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("create_sample_template",
				mcp.WithDescription("Create a sample template. template_data is passed to RSpace as given: "+
					"name (required), description, defaultUnitId and fields, where each field has name, type "+
					"(string, text, number, date, choice, radio, ...) and optional content or options."),
				mcp.WithObject("template_data", mcp.Required(), mcp.Description("Template definition")),
			), "Create sample template", false, false),
			Action:  "write",
			Target:  "template_data",
			Handler: bind(h.createSampleTemplate),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("get_sample_template",
				mcp.WithDescription("Get a sample template with its field definitions."),
				withID("template_id", "Template id, numeric or global (IT1234)", true),
			), "Get sample template", true, false),
			ReadOnly: true,
			Action:   "read",
			Target:   "template_id",
			Handler:  bind(h.getSampleTemplate),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("list_sample_templates",
				mcp.WithDescription("List the sample templates visible to the user."),
				withPageSize(defaultPageSize),
				withPageNumber(),
			), "List sample templates", true, false),
			ReadOnly: true,
			Action:   "list",
			Handler:  bind(h.listSampleTemplates),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("rename_inventory_item",
				mcp.WithDescription("Rename a sample, subsample, container or template."),
				mcp.WithString("item_id", mcp.Required(), mcp.Description("Global id of the item (SA, SS, IC or IT followed by a number)")),
				mcp.WithString("new_name", mcp.Required(), mcp.Description("New name")),
			), "Rename inventory item", false, false),
			Action:  "write",
			Target:  "item_id",
			Handler: bind(h.renameInventoryItem),
		}),
		inventory(Tool{
			Def: annotate(mcp.NewTool("add_extra_fields_to_item",
				mcp.WithDescription("Add custom fields to a sample, subsample, container or template. "+
					"Each field is an object with name, type (text or number, default text) and content."),
				mcp.WithString("item_id", mcp.Required(), mcp.Description("Global id of the item (SA, SS, IC or IT followed by a number)")),
				mcp.WithArray("field_data",
					mcp.Required(),
					mcp.MinItems(1),
					mcp.Description("Fields to add"),
					mcp.Items(map[string]any{
						"type":     "object",
						"required": []any{"name"},
					}),
				),
			), "Add extra fields", false, false),
			Action:  "write",
			Target:  "item_id",
			Handler: bind(h.addExtraFields),
		}),
	}
}

type createSampleArgs struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	SubSampleCount int      `json:"subsample_count"`
	QuantityValue  *float64 `json:"total_quantity_value"`
	QuantityUnit   string   `json:"total_quantity_unit"`

	sample rspace.NewSample
}

func (a *createSampleArgs) Validate() error {
	var err error
	s := rspace.NewSample{Description: a.Description, SubSampleCount: a.SubSampleCount}
	if s.Name, err = requiredName("name", a.Name); err != nil {
		return err
	}
	if s.SubSampleCount == 0 {
		s.SubSampleCount = 1
	}
	if len(a.Tags) > 0 {
		if s.Tags, err = tagList("tags", a.Tags); err != nil {
			return err
		}
	}
	if s.Quantity, err = quantity("total_quantity_value", a.QuantityValue, "total_quantity_unit", a.QuantityUnit); err != nil {
		return err
	}
	a.sample = s
	return nil
}

// quantity builds an amount from a value and unit argument pair. The unit
// defaults to ml; a unit without a value is rejected rather than ignored.
func quantity(valueField string, value *float64, unitField, unit string) (*rspace.Quantity, error) {
	if value == nil {
		if unit != "" {
			return nil, validate.Fieldf(valueField, "required when %s is given", unitField)
		}
		return nil, nil
	}
	if unit == "" {
		unit = "ml"
	}
	id, err := rspace.UnitID(unit)
	if err != nil {
		return nil, validate.Field(unitField, err)
	}
	return &rspace.Quantity{NumericValue: *value, UnitID: id}, nil
}

func (h *handlers) createSample(ctx context.Context, a createSampleArgs) (any, error) {
	return h.client.CreateSample(ctx, a.sample)
}

type sampleArgs struct {
	SampleID recordID `json:"sample_id"`
	NewName  string   `json:"new_name"`

	id int64
}

func (a *sampleArgs) Validate() (err error) {
	a.NewName = strings.TrimSpace(a.NewName)
	a.id, err = a.SampleID.resolve("sample_id")
	return err
}

func (h *handlers) getSample(ctx context.Context, a sampleArgs) (any, error) {
	return h.client.Sample(ctx, a.id)
}

func (h *handlers) duplicateSample(ctx context.Context, a sampleArgs) (any, error) {
	return h.client.DuplicateSample(ctx, a.id, a.NewName)
}

type listSamplesArgs struct {
	PageSize   int    `json:"page_size"`
	PageNumber int    `json:"page_number"`
	OrderBy    string `json:"order_by"`
	SortOrder  string `json:"sort_order"`
}

func (h *handlers) listSamples(ctx context.Context, a listSamplesArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	order, dir := a.OrderBy, a.SortOrder
	if order == "" {
		order = "lastModified"
	}
	if dir == "" {
		dir = "desc"
	}
	return h.client.ListSamples(ctx, rspace.Page{Size: size, Number: a.PageNumber, OrderBy: order + " " + dir})
}

type noteArgs struct {
	SubSampleID recordID `json:"subsample_id"`
	Note        string   `json:"note"`

	id int64
}

func (a *noteArgs) Validate() error {
	var err error
	if a.id, err = a.SubSampleID.resolve("subsample_id"); err != nil {
		return err
	}
	if strings.TrimSpace(a.Note) == "" {
		return validate.Field("note", validate.ErrMissingArgument)
	}
	return nil
}

func (h *handlers) addSubSampleNote(ctx context.Context, a noteArgs) (any, error) {
	return h.client.AddSubSampleNote(ctx, a.id, a.Note)
}

type searchArgs struct {
	Query      string `json:"query"`
	ResultType string `json:"result_type"`
	PageSize   int    `json:"page_size"`
	PageNumber int    `json:"page_number"`
}

func (a *searchArgs) Validate() error {
	a.Query = strings.TrimSpace(a.Query)
	return validate.Required("query", a.Query)
}

func (h *handlers) searchInventory(ctx context.Context, a searchArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	res, err := h.client.SearchInventory(ctx, a.Query, a.ResultType, rspace.Page{Size: size, Number: a.PageNumber})
	if err != nil {
		return nil, err
	}
	if res.Records == nil {
		res.Records = []rspace.InventoryItem{}
	}
	return res, nil
}

type createContainerArgs struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Tags               []string `json:"tags"`
	CanStoreContainers *bool    `json:"can_store_containers"`
	CanStoreSamples    *bool    `json:"can_store_samples"`
	ParentContainerID  recordID `json:"parent_container_id"`

	container rspace.NewContainer
}

func (a *createContainerArgs) Validate() error {
	var err error
	c := rspace.NewContainer{
		Description:        a.Description,
		CanStoreContainers: a.CanStoreContainers == nil || *a.CanStoreContainers,
		CanStoreSamples:    a.CanStoreSamples == nil || *a.CanStoreSamples,
	}
	if c.Name, err = requiredName("name", a.Name); err != nil {
		return err
	}
	if len(a.Tags) > 0 {
		if c.Tags, err = tagList("tags", a.Tags); err != nil {
			return err
		}
	}
	if c.ParentID, err = optionalID("parent_container_id", a.ParentContainerID); err != nil {
		return err
	}
	a.container = c
	return nil
}

func (h *handlers) createListContainer(ctx context.Context, a createContainerArgs) (any, error) {
	return h.client.CreateListContainer(ctx, a.container)
}

type containerArgs struct {
	ContainerID    recordID `json:"container_id"`
	IncludeContent bool     `json:"include_content"`

	id int64
}

func (a *containerArgs) Validate() (err error) {
	a.id, err = a.ContainerID.resolve("container_id")
	return err
}

func (h *handlers) getContainer(ctx context.Context, a containerArgs) (any, error) {
	return h.client.Container(ctx, a.id, a.IncludeContent)
}

type pageArgs struct {
	PageSize   int `json:"page_size"`
	PageNumber int `json:"page_number"`
}

func (h *handlers) listContainers(ctx context.Context, a pageArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	return h.client.ListContainers(ctx, rspace.Page{Size: size, Number: a.PageNumber})
}

type gridContainerArgs struct {
	createContainerArgs
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (a *gridContainerArgs) Validate() error {
	if err := a.createContainerArgs.Validate(); err != nil {
		return err
	}
	a.container.Rows, a.container.Columns = a.Rows, a.Columns
	return nil
}

func (h *handlers) createGridContainer(ctx context.Context, a gridContainerArgs) (any, error) {
	return h.client.CreateGridContainer(ctx, a.container)
}

func (h *handlers) getContainerSummary(ctx context.Context, a containerArgs) (any, error) {
	return h.client.Container(ctx, a.id, false)
}

func (h *handlers) getContainerContents(ctx context.Context, a containerArgs) (any, error) {
	c, err := h.client.Container(ctx, a.id, true)
	if err != nil {
		return nil, err
	}
	if c.Locations == nil {
		return []rspace.Location{}, nil
	}
	return c.Locations, nil
}

type splitArgs struct {
	SubSampleID  recordID `json:"subsample_id"`
	Count        int      `json:"num_new_subsamples"`
	PerSubSample *float64 `json:"quantity_per_subsample"`
	Unit         string   `json:"quantity_unit"`

	id  int64
	per *rspace.Quantity
}

func (a *splitArgs) Validate() (err error) {
	if a.id, err = a.SubSampleID.resolve("subsample_id"); err != nil {
		return err
	}
	if a.Count < 1 {
		return validate.Fieldf("num_new_subsamples", "must be at least 1")
	}
	a.per, err = quantity("quantity_per_subsample", a.PerSubSample, "quantity_unit", a.Unit)
	return err
}

func (h *handlers) splitSubSample(ctx context.Context, a splitArgs) (any, error) {
	subs, err := h.client.SplitSubSample(ctx, a.id, a.Count, a.per)
	if err != nil {
		return nil, err
	}
	return map[string]any{"subsample_id": a.id, "created": subs}, nil
}

type moveArgs struct {
	TargetID recordID `json:"target_container_id"`
	ItemIDs  []string `json:"item_ids"`

	target int64
}

func (a *moveArgs) Validate() (err error) {
	if a.target, err = a.TargetID.resolve("target_container_id"); err != nil {
		return err
	}
	if len(a.ItemIDs) == 0 {
		return validate.Field("item_ids", validate.ErrMissingArgument)
	}
	for i, g := range a.ItemIDs {
		field := fmt.Sprintf("item_ids[%d]", i)
		_, kind, err := rspace.InventoryRecord(g)
		if err != nil {
			return validate.Field(field, err)
		}
		if kind == "SAMPLE_TEMPLATE" {
			return validate.Fieldf(field, "templates cannot be moved")
		}
	}
	return nil
}

// moveResult flattens the bulk outcome under a success flag.
type moveResult struct {
	Success bool `json:"success"`
	rspace.BulkResult
}

func (h *handlers) moveToListContainer(ctx context.Context, a moveArgs) (any, error) {
	res, err := h.client.MoveToListContainer(ctx, a.target, a.ItemIDs)
	if err != nil {
		return nil, err
	}
	return moveResult{Success: res.ErrorCount == 0, BulkResult: res}, nil
}

type createTemplateArgs struct {
	TemplateData map[string]any `json:"template_data"`
}

func (a *createTemplateArgs) Validate() error {
	name, _ := a.TemplateData["name"].(string)
	if strings.TrimSpace(name) == "" {
		return validate.Field("template_data.name", validate.ErrMissingArgument)
	}
	if f, ok := a.TemplateData["fields"]; ok {
		if _, ok := f.([]any); !ok {
			return validate.Fieldf("template_data.fields", "must be a list of field definitions")
		}
	}
	return nil
}

func (h *handlers) createSampleTemplate(ctx context.Context, a createTemplateArgs) (any, error) {
	return h.client.CreateSampleTemplate(ctx, a.TemplateData)
}

type templateArgs struct {
	TemplateID recordID `json:"template_id"`

	id int64
}

func (a *templateArgs) Validate() (err error) {
	a.id, err = a.TemplateID.resolve("template_id")
	return err
}

func (h *handlers) getSampleTemplate(ctx context.Context, a templateArgs) (any, error) {
	return h.client.SampleTemplate(ctx, a.id)
}

func (h *handlers) listSampleTemplates(ctx context.Context, a pageArgs) (any, error) {
	size, err := h.pageSize("page_size", a.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	l, err := h.client.ListSampleTemplates(ctx, rspace.Page{Size: size, Number: a.PageNumber})
	if err != nil {
		return nil, err
	}
	if l.Templates == nil {
		l.Templates = []rspace.SampleTemplate{}
	}
	return l, nil
}

// inventoryItemID checks that s is the global id of an inventory record.
func inventoryItemID(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validate.Field(field, validate.ErrMissingArgument)
	}
	if _, _, err := rspace.InventoryRecord(s); err != nil {
		return "", validate.Field(field, err)
	}
	return s, nil
}

type renameItemArgs struct {
	ItemID  string `json:"item_id"`
	NewName string `json:"new_name"`
}

func (a *renameItemArgs) Validate() (err error) {
	if a.ItemID, err = inventoryItemID("item_id", a.ItemID); err != nil {
		return err
	}
	a.NewName, err = requiredName("new_name", a.NewName)
	return err
}

func (h *handlers) renameInventoryItem(ctx context.Context, a renameItemArgs) (any, error) {
	return h.client.RenameItem(ctx, a.ItemID, a.NewName)
}

type extraFieldsArgs struct {
	ItemID    string           `json:"item_id"`
	FieldData []map[string]any `json:"field_data"`

	fields []rspace.ExtraField
}

func (a *extraFieldsArgs) Validate() (err error) {
	if a.ItemID, err = inventoryItemID("item_id", a.ItemID); err != nil {
		return err
	}
	if len(a.FieldData) == 0 {
		return validate.Field("field_data", validate.ErrMissingArgument)
	}
	for i, fd := range a.FieldData {
		f, err := extraField(fmt.Sprintf("field_data[%d]", i), fd)
		if err != nil {
			return err
		}
		a.fields = append(a.fields, f)
	}
	return nil
}

// extraField converts one field_data entry. Number fields must hold a number.
func extraField(field string, fd map[string]any) (rspace.ExtraField, error) {
	name, _ := fd["name"].(string)
	f := rspace.ExtraField{Name: strings.TrimSpace(name), Type: "text"}
	if f.Name == "" {
		return f, validate.Field(field+".name", validate.ErrMissingArgument)
	}
	if t, ok := fd["type"].(string); ok && t != "" {
		f.Type = strings.ToLower(t)
	}
	if f.Type != "text" && f.Type != "number" {
		return f, validate.Fieldf(field+".type", "must be text or number")
	}
	switch c := fd["content"].(type) {
	case nil:
	case string:
		f.Content = c
	case float64:
		f.Content = strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		f.Content = strconv.FormatBool(c)
	default:
		return f, validate.Fieldf(field+".content", "must be a string or a number")
	}
	if f.Type == "number" {
		if _, err := strconv.ParseFloat(f.Content, 64); err != nil {
			return f, validate.Fieldf(field+".content", "number field needs numeric content, got %q", f.Content)
		}
	}
	return f, nil
}

func (h *handlers) addExtraFields(ctx context.Context, a extraFieldsArgs) (any, error) {
	return h.client.AddExtraFields(ctx, a.ItemID, a.fields)
}
