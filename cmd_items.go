package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"tokodash/internal/collection"
	"tokodash/internal/form"
	"tokodash/internal/models"
	"tokodash/internal/storefront"
	"tokodash/internal/validation"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// printNotifier writes form notices to the command output.
type printNotifier struct{ w io.Writer }

func (n printNotifier) Notify(msg string) { fmt.Fprintln(n.w, msg) }

func (c *cli) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage the items of your store",
	}
	cmd.AddCommand(c.itemsListCmd(), c.itemsCreateCmd(), c.itemsUpdateCmd(), c.itemsDeleteCmd())
	return cmd
}

// itemsCore loads the merchant's items and returns the collection together
// with a form wired to it.
func (c *cli) itemsCore(cmd *cobra.Command) (*collection.Collection, *form.Form, error) {
	store, err := c.requireSession()
	if err != nil {
		return nil, nil, err
	}
	api := c.apiClient()
	coll := collection.New(api, store, c.logger.Named("items"))
	f := form.New(api, store, coll, printNotifier{c.out}, c.logger.Named("form"))

	coll.Load(cmd.Context())
	if notice := coll.View().Notice; notice != "" {
		return nil, nil, errors.New(notice)
	}
	return coll, f, nil
}

func (c *cli) itemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, _, err := c.itemsCore(cmd)
			if err != nil {
				return err
			}
			items := coll.View().Items
			if len(items) == 0 {
				fmt.Fprintln(c.out, "No items yet.")
				return nil
			}
			fmt.Fprintln(c.out, itemsTable(items))
			return nil
		},
	}
}

func itemsTable(items []models.Item) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		image := "-"
		if it.ImageURL != nil {
			image = *it.ImageURL
		}
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10),
			it.Name,
			strconv.Itoa(it.Quantity),
			storefront.FormatPrice(it.Price),
			image,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "QTY", "PRICE", "IMAGE").
		Rows(rows...).
		Render()
}

// itemFlags are the field flags shared by create and update.
type itemFlags struct {
	name, description, quantity, price, image string
}

func (fl *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fl.name, "name", "", "item name")
	cmd.Flags().StringVar(&fl.description, "description", "", "item description")
	cmd.Flags().StringVar(&fl.quantity, "quantity", "", "units in stock")
	cmd.Flags().StringVar(&fl.price, "price", "", "unit price")
	cmd.Flags().StringVar(&fl.image, "image", "", "path of an image to upload")
}

// apply copies the flags the user set into the form.
func (fl *itemFlags) apply(cmd *cobra.Command, f *form.Form) error {
	fields := []struct{ flag, key, value string }{
		{"name", validation.FieldName, fl.name},
		{"description", validation.FieldDescription, fl.description},
		{"quantity", validation.FieldQuantity, fl.quantity},
		{"price", validation.FieldPrice, fl.price},
	}
	for _, field := range fields {
		if !cmd.Flags().Changed(field.flag) {
			continue
		}
		if err := f.SetField(field.key, field.value); err != nil {
			return err
		}
	}
	if fl.image == "" {
		return nil
	}
	data, err := os.ReadFile(fl.image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return f.SetImageFile(&models.ImageFile{Name: filepath.Base(fl.image), Data: data})
}

// submit runs the form and reports the outcome.
func (c *cli) submit(cmd *cobra.Command, f *form.Form) error {
	outcome, err := f.Submit(cmd.Context())
	if err != nil {
		return err
	}
	view := f.View()
	switch outcome {
	case form.OutcomeSaved:
		fmt.Fprintln(c.out, view.Success)
		return nil
	case form.OutcomeInvalid:
		return validationError(view.Errors)
	default:
		return errors.New(view.Errors[validation.FieldGeneral])
	}
}

func validationError(errs validation.ErrorMap) error {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	joined := make([]error, 0, len(keys))
	for _, k := range keys {
		joined = append(joined, fmt.Errorf("%s: %s", k, errs[k]))
	}
	return errors.Join(joined...)
}

func (c *cli) itemsCreateCmd() *cobra.Command {
	var fl itemFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := c.itemsCore(cmd)
			if err != nil {
				return err
			}
			f.OpenCreate()
			if err := fl.apply(cmd, f); err != nil {
				return err
			}
			return c.submit(cmd, f)
		},
	}
	fl.register(cmd)
	return cmd
}

func (c *cli) itemsUpdateCmd() *cobra.Command {
	var fl itemFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an item; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, f, err := c.itemsCore(cmd)
			if err != nil {
				return err
			}
			item, err := findItem(coll, args[0])
			if err != nil {
				return err
			}
			f.OpenEdit(item)
			if err := fl.apply(cmd, f); err != nil {
				return err
			}
			return c.submit(cmd, f)
		},
	}
	fl.register(cmd)
	return cmd
}

func (c *cli) itemsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, _, err := c.itemsCore(cmd)
			if err != nil {
				return err
			}
			item, err := findItem(coll, args[0])
			if err != nil {
				return err
			}

			coll.RequestDelete(item)
			if !yes {
				coll.CancelDelete()
				return fmt.Errorf("refusing to delete %q without --yes", item.Name)
			}
			if err := coll.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			view := coll.View()
			if view.Error != "" {
				return errors.New(view.Error)
			}
			fmt.Fprintln(c.out, view.Success)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

func findItem(coll *collection.Collection, arg string) (models.Item, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return models.Item{}, fmt.Errorf("invalid item id %q", arg)
	}
	item, ok := coll.Item(id)
	if !ok {
		return models.Item{}, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}
