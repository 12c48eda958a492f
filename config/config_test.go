// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optable/easybytes/convert"
	pkgerrors "github.com/optable/easybytes/errors"
	"github.com/optable/easybytes/unit"
)

func TestDefaultIsValid(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())
	assert.Equal(t, unit.Decimal, conf.Base)
	assert.Equal(t, unit.Gigabytes, conf.DefaultUnit)
	assert.Equal(t, EmitKeystroke, conf.Emit)
	assert.Equal(t, convert.MaxAutoUnit, conf.AutoUnit())
	assert.Equal(t, unit.Names(false), conf.Units())
}

func TestValidateReportsEveryField(t *testing.T) {
	bad := unit.Index(7)
	conf := Config{
		Base:              512,
		DefaultUnit:       -1,
		DefaultBytes:      -10,
		MaxAutoUnit:       &bad,
		Emit:              "sometimes",
		RenderHiddenField: true,
	}

	errs := pkgerrors.All(conf.Validate())
	require.Len(t, errs, 6)

	var fields []string
	for _, err := range errs {
		var fieldErr *pkgerrors.FieldError
		require.True(t, errors.As(err, &fieldErr))
		fields = append(fields, fieldErr.Field)
	}
	assert.Equal(t, []string{"base", "default_unit", "default_bytes", "max_auto_unit", "emit", "field_name"}, fields)
	assert.ErrorIs(t, errs[0], unit.ErrInvalidBase)
	assert.ErrorIs(t, errs[2], ErrNegativeBytes)
}

func TestSetDefaults(t *testing.T) {
	var conf Config
	conf.SetDefaults()
	assert.Equal(t, unit.Decimal, conf.Base)
	assert.Equal(t, unit.Bytes, conf.DefaultUnit)
	assert.Equal(t, EmitKeystroke, conf.Emit)
	assert.Equal(t, DefaultFieldName, conf.FieldName)
	assert.NoError(t, conf.Validate())
}

func TestConverter(t *testing.T) {
	petabytes := unit.Petabytes
	conf := Default()
	conf.Base = unit.Binary
	conf.MaxAutoUnit = &petabytes

	conv, err := conf.Converter()
	require.NoError(t, err)
	assert.Equal(t, unit.Binary, conv.Base())
	assert.Equal(t, unit.Gigabytes, conv.DefaultUnit())
	assert.Equal(t, unit.Petabytes, conv.ToDisplay(unit.PiB).Unit)

	conf.Base = 10
	_, err = conf.Converter()
	assert.ErrorIs(t, err, unit.ErrInvalidBase)
}

func TestJSONLoader(t *testing.T) {
	loader := &JSONLoader{}

	v, err := loader.Unmarshal([]byte(`{"base": 1024, "abbreviate_units": true, "default_bytes": 3072}`))
	require.NoError(t, err)
	conf, err := FromProfile(v)
	require.NoError(t, err)
	assert.Equal(t, unit.Binary, conf.Base)
	assert.True(t, conf.AbbreviateUnits)
	assert.Equal(t, int64(3072), conf.DefaultBytes)
	// Absent fields keep their defaults.
	assert.Equal(t, unit.Gigabytes, conf.DefaultUnit)
	assert.Equal(t, EmitKeystroke, conf.Emit)

	b, err := loader.Marshal(conf)
	require.NoError(t, err)
	v, err = loader.Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, conf, v)

	_, err = loader.Unmarshal([]byte(`{"base": 1000, "emit": "never"}`))
	assert.ErrorIs(t, err, ErrInvalidEmitMode)

	_, err = loader.Unmarshal([]byte(`{`))
	assert.Error(t, err)
}

func TestYAMLLoader(t *testing.T) {
	loader := &YAMLLoader{}

	v, err := loader.Unmarshal([]byte("base: 1024\ndefault_unit: MB\nmax_auto_unit: 5\nemit: committed\nrender_hidden_field: true\nfield_name: quota\n"))
	require.NoError(t, err)
	conf, err := FromProfile(v)
	require.NoError(t, err)
	assert.Equal(t, unit.Binary, conf.Base)
	assert.Equal(t, unit.Megabytes, conf.DefaultUnit)
	assert.Equal(t, unit.Petabytes, conf.AutoUnit())
	assert.Equal(t, EmitCommitted, conf.Emit)
	assert.True(t, conf.RenderHiddenField)
	assert.Equal(t, "quota", conf.FieldName)

	b, err := loader.Marshal(conf)
	require.NoError(t, err)
	v, err = loader.Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, conf, v)

	_, err = loader.Unmarshal([]byte("default_bytes: -1\n"))
	assert.ErrorIs(t, err, ErrNegativeBytes)
}

func TestFromProfile(t *testing.T) {
	conf, err := FromProfile(Default())
	require.NoError(t, err)
	assert.Equal(t, unit.Decimal, conf.Base)

	_, err = FromProfile(map[string]interface{}{})
	assert.Error(t, err)
}
