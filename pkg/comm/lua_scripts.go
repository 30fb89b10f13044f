// pkg/comm/lua_scripts.go

package comm

// KEYS: members, abort
// ARGV: rank, ttl in seconds
// A rank that is already registered means the job name is reused while
// the keys of an earlier run are still alive.
const scriptJoin = `
if redis.call('EXISTS', KEYS[2]) == 1 then
    return redis.error_reply("EABORTED " .. redis.call('GET', KEYS[2]))
end
if redis.call('HSETNX', KEYS[1], ARGV[1], 1) == 0 then
    return redis.error_reply("EREUSED")
end
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 1
`

// KEYS: sum, arrivals, kind, result list, members
// ARGV: contribution, group size, ttl in seconds, kind ("i" or "f")
const scriptReduce = `
local kind = redis.call('GET', KEYS[3])
if kind and kind ~= ARGV[4] then
    return redis.error_reply("EMISMATCH")
end
local sum
if ARGV[4] == "f" then
    sum = redis.call('INCRBYFLOAT', KEYS[1], ARGV[1])
else
    sum = redis.call('INCRBY', KEYS[1], ARGV[1])
end
local n = redis.call('INCR', KEYS[2])
local size = tonumber(ARGV[2])
redis.call('EXPIRE', KEYS[5], ARGV[3])
if n >= size then
    for i = 1, size do
        redis.call('RPUSH', KEYS[4], sum)
    end
    redis.call('EXPIRE', KEYS[4], ARGV[3])
    redis.call('DEL', KEYS[1], KEYS[2], KEYS[3])
    return n
end
redis.call('SET', KEYS[3], ARGV[4], 'EX', ARGV[3])
redis.call('EXPIRE', KEYS[1], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[3])
return n
`
