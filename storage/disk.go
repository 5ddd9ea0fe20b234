package storage

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// Disk is a small YAML key/value file. Every Set rewrites the file.
type Disk struct {
	data     map[string]interface{}
	filename string
	mutex    sync.RWMutex
}

// NewDisk loads filename, starting empty when it does not exist yet.
func NewDisk(filename string) (*Disk, error) {
	d := &Disk{
		data:     make(map[string]interface{}),
		filename: filename,
	}

	err := d.load()
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Disk) load() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	file, err := os.ReadFile(d.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	err = yaml.Unmarshal(file, &d.data)
	if err != nil {
		return err
	}
	if d.data == nil {
		d.data = make(map[string]interface{})
	}

	return nil
}

func (d *Disk) Get(key string) (interface{}, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	value, ok := d.data[key]
	return value, ok
}

func (d *Disk) Len() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return len(d.data)
}

func (d *Disk) Set(key string, value interface{}) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.data[key] = value
	err := d.flush()

	return err
}

func (d *Disk) flush() error {
	yamlData, err := yaml.Marshal(&d.data)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(yamlData)
	return err
}
