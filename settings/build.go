package settings

import "strconv"

// Build assembles the gopium argument vector for a preset:
//
//	[-p path] [-r pattern] [flags...] walker package strategies...
//
// Flags always precede the positionals. An unknown preset yields a nil
// vector, which callers treat as nothing to run.
func (s *Snapshot) Build(presetID, filePath, packageID, pattern string) []string {
	preset, ok := s.presets[presetID]
	if !ok {
		return nil
	}

	args := make([]string, 0, 2+len(preset.Strategies))
	args = append(args, preset.Walker, packageID)
	args = append(args, preset.Strategies...)

	var flags []string
	if filePath != "" {
		flags = append(flags, "-p", filePath)
	}

	if pattern != "" {
		flags = append(flags, "-r", pattern)
	}

	flags = s.flags.appendArgs(flags)

	return append(flags, args...)
}

// appendArgs serializes the flag set in its fixed order c a l e f d b i w s t.
// List values repeat the flag once per element.
func (f Flags) appendArgs(args []string) []string {
	args = appendString(args, "c", f.Compiler)
	args = appendString(args, "a", f.Architecture)
	args = appendInts(args, "l", f.CacheLineSizes)
	args = appendStrings(args, "e", f.BuildEnvs)
	args = appendStrings(args, "f", f.BuildFlags)
	args = appendBool(args, "d", f.Deep)
	args = appendBool(args, "b", f.Backref)
	args = appendInt(args, "i", f.Indent)
	args = appendInt(args, "w", f.TabWidth)
	args = appendBool(args, "s", f.UseSpace)
	args = appendInt(args, "t", f.Timeout)

	return args
}

func appendString(args []string, key string, v *string) []string {
	if v == nil {
		return args
	}

	return append(args, "-"+key, *v)
}

func appendInt(args []string, key string, v *int) []string {
	if v == nil {
		return args
	}

	return append(args, "-"+key, strconv.Itoa(*v))
}

func appendBool(args []string, key string, v *bool) []string {
	if v == nil || !*v {
		return args
	}

	return append(args, "-"+key)
}

func appendStrings(args []string, key string, values []string) []string {
	for _, v := range values {
		args = append(args, "-"+key, v)
	}

	return args
}

func appendInts(args []string, key string, values []int) []string {
	for _, v := range values {
		args = append(args, "-"+key, strconv.Itoa(v))
	}

	return args
}
