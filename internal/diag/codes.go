package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// World files
	WorldInfo                Code = 1000
	WorldSyntax              Code = 1001
	WorldUnknownClass        Code = 1002
	WorldUnknownScope        Code = 1003
	WorldUnknownContext      Code = 1004
	WorldBadType             Code = 1005
	WorldDuplicateName       Code = 1006
	WorldBadDeclaration      Code = 1007
	WorldBadCall             Code = 1008
	WorldBadReceiver         Code = 1009
	WorldCyclicSupertypes    Code = 1010
	WorldUnknownPackage      Code = 1011
	WorldCompanionConflict   Code = 1012
	WorldUnusedDeclaration   Code = 1013
	WorldDuplicateCallID     Code = 1014
	WorldUnknownExpectation  Code = 1015
	WorldLiteralClassMissing Code = 1016

	// Resolution outcomes
	ResInfo                Code = 2000
	ResUnresolved          Code = 2001
	ResAmbiguous           Code = 2002
	ResInapplicable        Code = 2003
	ResWrongReceiver       Code = 2004
	ResArgumentMismatch    Code = 2005
	ResHidden              Code = 2006
	ResExpectationMismatch Code = 2007
	ResResolvedViaInvoke   Code = 2008
	ResLowPriority         Code = 2009
	ResParameterMapping    Code = 2010
	ResNotOperator         Code = 2011

	// IO / project
	IOLoadFileError   Code = 4001
	ProjectBadConfig  Code = 5001
	ProjectCacheError Code = 5002

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	WorldInfo:                "World information",
	WorldSyntax:              "Malformed world file",
	WorldUnknownClass:        "Unknown class",
	WorldUnknownScope:        "Unknown local scope",
	WorldUnknownContext:      "Unknown context",
	WorldBadType:             "Malformed type expression",
	WorldDuplicateName:       "Duplicate name",
	WorldBadDeclaration:      "Malformed declaration",
	WorldBadCall:             "Malformed call site",
	WorldBadReceiver:         "Malformed receiver",
	WorldCyclicSupertypes:    "Cyclic supertypes",
	WorldUnknownPackage:      "Unknown package",
	WorldCompanionConflict:   "Class has more than one companion",
	WorldUnusedDeclaration:   "Declaration is not reachable from any context",
	WorldDuplicateCallID:     "Duplicate call id",
	WorldUnknownExpectation:  "Expectation names an unknown declaration",
	WorldLiteralClassMissing: "Integer literal class is not declared",
	ResInfo:                  "Resolution information",
	ResUnresolved:            "Unresolved reference",
	ResAmbiguous:             "Ambiguous call",
	ResInapplicable:          "No applicable candidate",
	ResWrongReceiver:         "Receiver type mismatch",
	ResArgumentMismatch:      "Argument mismatch",
	ResHidden:                "Candidate is hidden",
	ResExpectationMismatch:   "Resolution differs from expectation",
	ResResolvedViaInvoke:     "Call resolved through invoke convention",
	ResLowPriority:           "Call resolved to a low-priority candidate",
	ResParameterMapping:      "Arguments do not map to parameters",
	ResNotOperator:           "Invoke candidate is not an operator",
	IOLoadFileError:          "I/O error",
	ProjectBadConfig:         "Malformed tower.toml",
	ProjectCacheError:        "Result cache error",
	ObsTimings:               "Timing report",
}

// ID returns the stable short identifier, e.g. RES2001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("WLD%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
