package model

import "strings"

// AirframeKeyword maps a lowercase description keyword to a canonical airframe code.
type AirframeKeyword struct {
	Keyword string
	Code    string
}

// AirframeLexicon is consulted in order; the first keyword found wins.
var AirframeLexicon = []AirframeKeyword{
	{Keyword: "ci-22", Code: "CI-22"},
	{Keyword: "cricket", Code: "CI-22"},
	{Keyword: "t/a-30", Code: "T/A-30"},
	{Keyword: "compass", Code: "T/A-30"},
	{Keyword: "sah-46", Code: "SAH-46"},
	{Keyword: "chicane", Code: "SAH-46"},
	{Keyword: "fs-12", Code: "FS-12"},
	{Keyword: "revoker", Code: "FS-12"},
	{Keyword: "fs-20", Code: "FS-20"},
	{Keyword: "vortex", Code: "FS-20"},
	{Keyword: "kr-67", Code: "KR-67"},
	{Keyword: "ifrit", Code: "KR-67"},
	{Keyword: "vl-49", Code: "VL-49"},
	{Keyword: "tarantula", Code: "VL-49"},
	{Keyword: "ew-25", Code: "EW-25"},
	{Keyword: "medusa", Code: "EW-25"},
	{Keyword: "sfb-81", Code: "SFB-81"},
	{Keyword: "darkreach", Code: "SFB-81"},
}

// InferAirframe returns the airframe code of the first lexicon keyword that
// occurs anywhere in description, ignoring case. Matching is by substring,
// so "cricketer" matches "cricket". It returns UnknownValue when nothing matches.
func InferAirframe(description string) string {
	lower := strings.ToLower(description)
	for _, entry := range AirframeLexicon {
		if strings.Contains(lower, entry.Keyword) {
			return entry.Code
		}
	}
	return UnknownValue
}

// AirframeFor returns the airframe to record for an item of the given type.
// Only liveries carry an airframe; every other type is UnknownValue.
func AirframeFor(itemType, description string) string {
	if itemType != ItemTypeAircraftLivery {
		return UnknownValue
	}
	return InferAirframe(description)
}
