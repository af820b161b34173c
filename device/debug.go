// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"io"
	"unsafe"

	vk "github.com/goki/vulkan"
	log "github.com/sirupsen/logrus"
)

// Severity of a driver diagnostic message.
type Severity int

// Known severities. SeverityUnknown messages bypass the logger.
const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityUnknown
)

// Category of a driver diagnostic message.
type Category int

// Message categories
const (
	CategoryGeneral Category = iota
	CategoryValidation
	CategoryPerformance
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "Validation"
	case CategoryPerformance:
		return "Performance"
	default:
		return "General"
	}
}

// DebugReportExtension is the instance extension carrying driver diagnostics.
const DebugReportExtension = "VK_EXT_debug_report"

var debugReportFlags = vk.DebugReportFlags(vk.DebugReportInformationBit |
	vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit |
	vk.DebugReportErrorBit |
	vk.DebugReportDebugBit)

func classifyReport(flags vk.DebugReportFlags) (Severity, Category) {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError, CategoryValidation
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityWarning, CategoryPerformance
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return SeverityWarning, CategoryValidation
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return SeverityInfo, CategoryGeneral
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return SeverityVerbose, CategoryGeneral
	}
	return SeverityUnknown, CategoryGeneral
}

// DebugMessenger routes driver diagnostics to a logger.
type DebugMessenger struct {
	logger log.FieldLogger
	raw    io.Writer
}

// Dispatch logs one diagnostic message.
func (m *DebugMessenger) Dispatch(severity Severity, category Category, layer, message string) {
	text := fmt.Sprintf("Vulkan validation layer (%s): %s", category, message)
	entry := m.logger.WithField("layer", layer)
	switch severity {
	case SeverityVerbose:
		entry.Debug(text)
	case SeverityInfo:
		entry.Info(text)
	case SeverityWarning:
		entry.Warn(text)
	case SeverityError:
		entry.Error(text)
	default:
		fmt.Fprintln(m.raw, text)
	}
}

func (m *DebugMessenger) report(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint64, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
	severity, category := classifyReport(flags)
	m.Dispatch(severity, category, layerPrefix, message)
	return vk.False
}
