// Copyright 2016 Aleksandr Demakin. All rights reserved.

package shmxfertest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToString(t *testing.T) {
	a := assert.New(t)
	a.Equal("", BytesToString(nil))
	a.Equal("000AFF10", BytesToString([]byte{0, 10, 255, 16}))
}

func TestStringToBytes(t *testing.T) {
	a := assert.New(t)
	data, err := StringToBytes("000AFF10")
	a.NoError(err)
	a.Equal([]byte{0, 10, 255, 16}, data)
	data, err = StringToBytes("000aff10")
	a.NoError(err)
	a.Equal([]byte{0, 10, 255, 16}, data)
	_, err = StringToBytes("0")
	a.Error(err)
	_, err = StringToBytes("ZZ")
	a.Error(err)
}
