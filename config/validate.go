// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("config"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Validate checks f for missing fields and malformed constraint values.
// All problems are reported, joined; each is an [*Error].
func Validate(f *File) error {
	return validateFile("file", f)
}

func validateFile(source string, f *File) error {
	var errs []error

	if err := structValidator().Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return NewError(source, "validate", err)
		}
		for _, fe := range verrs {
			errs = append(errs, NewFieldError(source, fieldPath(fe), "validate", describe(fe)))
		}
	}

	for i, rs := range f.Routes {
		for key, cs := range rs.Constraints {
			if _, err := cs.Value(); err != nil {
				errs = append(errs, NewFieldError(source, fmt.Sprintf("routes[%d].constraints.%s", i, key), "validate", err))
			}
		}
		for j, m := range rs.Methods {
			if m != "" && strings.ContainsAny(m, " \t/") {
				errs = append(errs, NewFieldError(source, fmt.Sprintf("routes[%d].methods[%d]", i, j), "validate",
					fmt.Errorf("invalid method %q", m)))
			}
		}
	}

	return errors.Join(errs...)
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) error {
	if fe.Param() != "" {
		return fmt.Errorf("failed %q validation (%s)", fe.Tag(), fe.Param())
	}
	return fmt.Errorf("failed %q validation", fe.Tag())
}

// normalize trims and uppercases methods, defaulting mounts to GET.
func (f *File) normalize() {
	for i := range f.Routes {
		upper(f.Routes[i].Methods)
	}
	for i := range f.Mounts {
		if len(f.Mounts[i].Methods) == 0 {
			f.Mounts[i].Methods = []string{http.MethodGet}
		}
		upper(f.Mounts[i].Methods)
	}
}

func upper(methods []string) {
	for i, m := range methods {
		methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
}
