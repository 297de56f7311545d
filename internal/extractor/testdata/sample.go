package sample

import (
	"fmt"
	"strings"
)

// Base is a base struct.
type Base struct {
	ID int
}

// User is a complex struct.
type User struct {
	Base
	Name string
}

// MyFunc is a function.
func MyFunc(a int, b string) bool {
	MyFunction("test")
	return true
}

// MyFunction is another function.
func MyFunction(s string) {}

// MyMethod is a method.
func (u *User) MyMethod(msg string) {
	fmt.Println(msg)
}

// Join concatenates parts.
func Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

// Pair has grouped and blank parameters.
func Pair(x, y int, _ bool) (int, error) {
	return x + y, nil
}
