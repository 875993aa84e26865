// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package broker

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsFromViper(t *testing.T) {
	t.Run("NilViper", testNewOptionsNilViper)
	t.Run("Unmarshals", testNewOptionsUnmarshals)
}

func testNewOptionsNilViper(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	opts, err := NewOptions(nil, nil)
	require.NoError(err)
	assert.Equal(DefaultCommandTimeout, opts.commandTimeout())
	assert.Equal(DefaultWorkerCount, opts.workerCount())
}

func testNewOptionsUnmarshals(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	v := viper.New()
	v.Set("commandTimeout", "5s")
	v.Set("workerCount", 8)

	opts, err := NewOptions(nil, v)
	require.NoError(err)
	assert.Equal(5*time.Second, opts.CommandTimeout)
	assert.Equal(8, opts.WorkerCount)
}
