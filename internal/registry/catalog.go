package registry

// CatalogVersion identifies the built-in catalog revision. Bump it whenever
// builtinEntries changes so exports can be traced back to a catalog.
const CatalogVersion = "2024.11.1"

var builtinEntries = []Entry{
	{
		Name:          "hayabusa",
		Patterns:      []string{`hayabusa[\w.-]*`},
		RepositoryURL: "https://github.com/Yamato-Security/hayabusa",
		DownloadURL:   "https://github.com/Yamato-Security/hayabusa/releases",
		Category:      CategoryLogAnalysis,
		Priority:      PriorityCritical,
		Language:      "rust",
		Description:   "Windows event log fast forensics timeline generator",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "uac",
		TokenOnly:     true,
		RepositoryURL: "https://github.com/tclahr/uac",
		Category:      CategoryCollection,
		Priority:      PriorityHigh,
		Language:      "shell",
		Description:   "Unix-like Artifacts Collector",
		Patterns:      []string{`unix.?artifacts.?collector`},
		Platforms:     []string{"linux", "darwin"},
	},
	{
		Name:          "chainsaw",
		Patterns:      []string{`chainsaw[\w.-]*`},
		RepositoryURL: "https://github.com/countercept/chainsaw",
		DownloadURL:   "https://github.com/countercept/chainsaw/releases",
		Category:      CategoryLogAnalysis,
		Priority:      PriorityHigh,
		Language:      "rust",
		Description:   "Rapidly search and hunt through Windows event logs",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "sigma",
		RepositoryURL: "https://github.com/SigmaHQ/sigma",
		Category:      CategoryLogAnalysis,
		Priority:      PriorityCritical,
		Language:      "python",
		Description:   "Generic signature format for SIEM systems",
	},
	{
		Name:          "yara",
		Aliases:       []string{"yara32", "yara64", "yarac", "yarac64"},
		RepositoryURL: "https://github.com/VirusTotal/yara",
		DownloadURL:   "https://github.com/VirusTotal/yara/releases",
		Category:      CategoryPatternMatching,
		Priority:      PriorityCritical,
		Language:      "c",
		Description:   "Pattern matching engine for malware research",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "volatility",
		Aliases:       []string{"vol", "vol3", "volatility3"},
		Patterns:      []string{`vol\.py`},
		RepositoryURL: "https://github.com/volatilityfoundation/volatility3",
		Category:      CategoryMemoryForensics,
		Priority:      PriorityCritical,
		Language:      "python",
		Description:   "Advanced memory forensics framework",
	},
	{
		Name:          "plaso",
		Aliases:       []string{"log2timeline", "psort"},
		Patterns:      []string{`log2timeline`},
		RepositoryURL: "https://github.com/log2timeline/plaso",
		Category:      CategoryTimeline,
		Priority:      PriorityHigh,
		Language:      "python",
		Description:   "Super timeline all the things",
	},
	{
		Name:          "autopsy",
		RepositoryURL: "https://github.com/sleuthkit/autopsy",
		Category:      CategoryDiskForensics,
		Priority:      PriorityHigh,
		Language:      "java",
		Description:   "Digital forensics platform",
	},
	{
		Name:          "sleuthkit",
		Aliases:       []string{"fls", "icat", "mmls", "tsk_recover"},
		Patterns:      []string{`\btsk_\w+`},
		RepositoryURL: "https://github.com/sleuthkit/sleuthkit",
		Category:      CategoryDiskForensics,
		Priority:      PriorityHigh,
		Language:      "c",
		Description:   "Library and collection of command line disk forensics tools",
	},
	{
		Name:          "capa",
		RepositoryURL: "https://github.com/mandiant/capa",
		DownloadURL:   "https://github.com/mandiant/capa/releases",
		Category:      CategoryMalwareAnalysis,
		Priority:      PriorityHigh,
		Language:      "python",
		Description:   "Identify capabilities in executable files",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "osquery",
		Aliases:       []string{"osqueryi", "osqueryd"},
		RepositoryURL: "https://github.com/osquery/osquery",
		DownloadURL:   "https://github.com/osquery/osquery/releases",
		Category:      CategoryTriage,
		Priority:      PriorityHigh,
		Language:      "cpp",
		Description:   "SQL powered operating system instrumentation framework",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "regripper",
		Aliases:       []string{"rip"},
		Patterns:      []string{`rip\.pl`},
		RepositoryURL: "https://github.com/keydet89/RegRipper3.0",
		Category:      CategoryRegistryAnalysis,
		Priority:      PriorityMedium,
		Language:      "perl",
		Description:   "Windows registry data extraction tool",
		Platforms:     []string{"windows"},
	},
	{
		Name:          "evtx",
		Aliases:       []string{"evtx_dump"},
		Patterns:      []string{`evtx_dump`},
		TokenOnly:     true,
		RepositoryURL: "https://github.com/omerbenamram/evtx",
		DownloadURL:   "https://github.com/omerbenamram/evtx/releases",
		Category:      CategoryLogAnalysis,
		Priority:      PriorityHigh,
		Language:      "rust",
		Description:   "Windows XML event log parser",
	},
	{
		Name:          "loki",
		RepositoryURL: "https://github.com/Neo23x0/Loki",
		Category:      CategoryPatternMatching,
		Priority:      PriorityMedium,
		Language:      "python",
		Description:   "Simple IOC and YARA scanner",
		Platforms:     []string{"windows", "linux"},
	},
	{
		Name:          "thor",
		Aliases:       []string{"thor-lite", "thor64", "thor-lite-util"},
		RepositoryURL: "https://github.com/NextronSystems/thor-lite",
		Category:      CategoryPatternMatching,
		Priority:      PriorityMedium,
		Language:      "go",
		Description:   "Compromise assessment scanner",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
	{
		Name:          "densityscout",
		RepositoryURL: "https://github.com/cert-ee/densityscout",
		Category:      CategoryMalwareAnalysis,
		Priority:      PriorityLow,
		Language:      "c",
		Description:   "Entropy analysis tool",
		Platforms:     []string{"windows", "linux"},
	},
	{
		Name:          "pe-sieve",
		Aliases:       []string{"pesieve", "pe-sieve32", "pe-sieve64"},
		RepositoryURL: "https://github.com/hasherezade/pe-sieve",
		DownloadURL:   "https://github.com/hasherezade/pe-sieve/releases",
		Category:      CategoryMemoryForensics,
		Priority:      PriorityMedium,
		Language:      "cpp",
		Description:   "Scans a process for in-memory modifications",
		Platforms:     []string{"windows"},
	},
	{
		Name:          "hollows_hunter",
		Aliases:       []string{"hollows-hunter", "hollows_hunter32", "hollows_hunter64"},
		RepositoryURL: "https://github.com/hasherezade/hollows_hunter",
		DownloadURL:   "https://github.com/hasherezade/hollows_hunter/releases",
		Category:      CategoryMemoryForensics,
		Priority:      PriorityMedium,
		Language:      "cpp",
		Description:   "Scans all running processes for in-memory modifications",
		Platforms:     []string{"windows"},
	},
	{
		Name:          "winpmem",
		Patterns:      []string{`winpmem[\w.-]*`},
		RepositoryURL: "https://github.com/Velocidex/WinPmem",
		DownloadURL:   "https://github.com/Velocidex/WinPmem/releases",
		Category:      CategoryMemoryForensics,
		Priority:      PriorityHigh,
		Language:      "cpp",
		Description:   "Windows physical memory acquisition tool",
		Platforms:     []string{"windows"},
	},
	{
		Name:          "linpmem",
		Patterns:      []string{`linpmem[\w.-]*`},
		RepositoryURL: "https://github.com/Velocidex/Linpmem",
		DownloadURL:   "https://github.com/Velocidex/Linpmem/releases",
		Category:      CategoryMemoryForensics,
		Priority:      PriorityHigh,
		Language:      "cpp",
		Description:   "Linux physical memory acquisition tool",
		Platforms:     []string{"linux"},
	},
	{
		Name:          "autorunsc",
		Aliases:       []string{"autoruns"},
		DownloadURL:   "https://download.sysinternals.com/files/Autoruns.zip",
		Category:      CategoryTriage,
		Priority:      PriorityHigh,
		Description:   "Sysinternals autostart location viewer",
		Platforms:     []string{"windows"},
	},
	{
		Name:        "sigcheck",
		DownloadURL: "https://download.sysinternals.com/files/Sigcheck.zip",
		Category:    CategoryTriage,
		Priority:    PriorityMedium,
		Description: "Sysinternals file signature and version checker",
		Platforms:   []string{"windows"},
	},
	{
		Name:        "handle",
		Aliases:     []string{"handle64"},
		TokenOnly:   true,
		DownloadURL: "https://download.sysinternals.com/files/Handle.zip",
		Category:    CategorySystemUtility,
		Priority:    PriorityLow,
		Description: "Sysinternals open handle viewer",
		Platforms:   []string{"windows"},
	},
	{
		Name:        "procdump",
		DownloadURL: "https://download.sysinternals.com/files/Procdump.zip",
		Category:    CategoryMemoryForensics,
		Priority:    PriorityMedium,
		Description: "Sysinternals process dump utility",
		Platforms:   []string{"windows"},
	},
	{
		Name:        "7za",
		Aliases:     []string{"7z"},
		TokenOnly:   true,
		DownloadURL: "https://www.7-zip.org/download.html",
		Category:    CategorySystemUtility,
		Priority:    PriorityLow,
		Description: "7-Zip standalone archiver",
		Platforms:   []string{"windows", "linux"},
	},
	{
		Name:          "velociraptor",
		TokenOnly:     true,
		RepositoryURL: "https://github.com/Velocidex/velociraptor",
		DownloadURL:   "https://github.com/Velocidex/velociraptor/releases",
		Category:      CategoryCollection,
		Priority:      PriorityCritical,
		Language:      "go",
		Description:   "Endpoint visibility and collection agent",
		Platforms:     []string{"windows", "linux", "darwin"},
	},
}

// BuiltinEntries returns a copy of the built-in catalog.
func BuiltinEntries() []Entry {
	out := make([]Entry, len(builtinEntries))
	copy(out, builtinEntries)
	return out
}
