package dto

// UploadFileResultDTO 单个文件的上传结果，失败不影响其他文件
type UploadFileResultDTO struct {
	FileName string `json:"file_name"`
	OK       bool   `json:"ok"`
	Kind     string `json:"kind,omitempty"`
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadResultDTO 一次上传请求的汇总
type UploadResultDTO struct {
	UploaderName string                 `json:"uploader_name"`
	Succeeded    int                    `json:"succeeded"`
	Failed       int                    `json:"failed"`
	Files        []*UploadFileResultDTO `json:"files"`
}
