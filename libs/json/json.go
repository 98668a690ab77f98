package json

import (
	"encoding/json"
	"fmt"
)

// Prettify renders the data as indented JSON.
func Prettify(data interface{}) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

func PrettifyStr(data interface{}) (string, error) {
	buf, err := Prettify(data)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// PrettyPrint writes the data to standard output as indented JSON, for a
// human reader.
func PrettyPrint(data interface{}) error {
	str, err := PrettifyStr(data)
	if err != nil {
		return err
	}
	fmt.Println(str)
	return nil
}

// Print writes the data to standard output as a single JSON line, for
// scripts to consume.
func Print(data interface{}) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("couldn't marshal to JSON: %w", err)
	}
	fmt.Println(string(buf))
	return nil
}
