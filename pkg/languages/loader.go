package languages

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Languages []Language `yaml:"languages"`
}

// LoadAll loads all .yaml and .yml files from the catalog directory,
// replacing the current language set. The defaults stay in effect when
// the directory cannot be read or yields no entries.
func (c *Catalog) LoadAll() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read language dir %q: %w", c.dir, err)
	}

	var loaded []Language
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("load %q: %w", path, err)
		}

		var cf catalogFile
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return fmt.Errorf("parse %q: %w", path, err)
		}

		for _, l := range cf.Languages {
			if l.Name == "" || l.Code == "" {
				return fmt.Errorf("%q: language entries need both name and code", path)
			}
		}
		loaded = append(loaded, cf.Languages...)
	}

	if len(loaded) == 0 {
		return nil
	}

	c.replace(loaded)
	return nil
}

// WatchAndReload watches the catalog directory for changes and reloads.
// This blocks until the done channel is closed.
func (c *Catalog) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", c.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					c.LoadAll()
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
