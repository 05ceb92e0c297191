package consts

// 上传者目录，zset 成员为上传者名，分数为可见媒体数
const GalleryUploadersKey = "gallery:uploaders"

// TokenBlacklistKey 后接令牌签名
const TokenBlacklistKey = "auth:blacklist:"

const UploaderRebuildLock = "lock:gallery:uploaders:rebuild"
