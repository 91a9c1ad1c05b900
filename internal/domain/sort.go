package domain

// SortField selects the RepoSummary field used for ordering
type SortField string

const (
	SortByName            SortField = "name"
	SortByFirstCommitDate SortField = "firstCommitDate"
	SortByTotalCommits    SortField = "totalCommits"
	SortByLastCommitDate  SortField = "lastCommitDate"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)
