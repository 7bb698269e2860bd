// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"lead-intake/pkg/registry"
)

const defaultRegistryPath = "configs/sink-registry.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	var registryPath string
	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")
	}

	// Add command flags
	idAdd := addCmd.String("id", "", "Sink ID as used in leads.sinks (e.g., chat)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Slack Notification)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category ("+strings.Join(registry.Categories, ", ")+")")
	backend := addCmd.String("backend", "", "Backend service (e.g., slack)")
	status := addCmd.String("status", "planned", "Implementation Status ("+strings.Join(registry.Statuses, ", ")+")")
	tags := addCmd.String("tags", "", "Comma-separated tags")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Sink ID to update")
	field := updateCmd.String("field", "", "Field to update (status, displayName, description, category, backend, docs)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		_ = addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *category == "" || *backend == "" {
			fmt.Println("Error: id, displayName, category, and backend are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		sink := registry.Sink{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Category:    *category,
			Backend:     *backend,
			Status:      *status,
			Tags:        splitTags(*tags),
		}
		if err := addSink(registryPath, sink); err != nil {
			fmt.Printf("Error adding sink: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added sink: %s\n", *idAdd)

	case "update":
		_ = updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateSink(registryPath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating sink: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated sink %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if err == nil {
			err = reg.Validate()
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d sinks.\n", len(reg.Sinks))

	case "help":
		fallthrough
	default:
		help()
	}
}

func addSink(path string, sink registry.Sink) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = registry.Empty()
	}
	if err := reg.Add(sink); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.Save(reg, path)
}

func updateSink(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Update(id, field, value); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.Save(reg, path)
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a sink to the registry
  update   Update an existing sink's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id chat -displayName "Slack Notification" -category messaging -backend slack -tags alerts
  registry-updater update -id workflow -field status -value verified
  registry-updater validate -path configs/sink-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
