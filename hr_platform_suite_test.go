package main_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHRPlatform(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HRPlatform Suite")
}
