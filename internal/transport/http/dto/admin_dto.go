package dto

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type AdminStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	BannedUsers        int64 `json:"bannedUsers"`
	TotalBalance       int64 `json:"totalBalance"`
	ActiveTasks        int64 `json:"activeTasks"`
	PendingWithdrawals int64 `json:"pendingWithdrawals"`
	PendingAmount      int64 `json:"pendingAmount"`
}

type AdminDataResponse struct {
	Success     bool                        `json:"success"`
	Stats       AdminStats                  `json:"stats"`
	Users       []UserResponse              `json:"users"`
	Tasks       []TaskResponse              `json:"tasks"`
	Withdrawals []PendingWithdrawalResponse `json:"withdrawals"`
}

type BanUserRequest struct {
	Reason string `json:"reason"`
}
